// Copyright 2014 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lang

import "testing"

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	l := newLexer("test", src)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("lexer error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

func TestLexerPunctuation(t *testing.T) {
	toks := lexAll(t, `a += 1 -= 2 == 3 != 4 <= 5 >= 6 && false || true`)
	var kinds []Kind
	for _, tok := range toks {
		if tok.Kind != NEWLINE {
			kinds = append(kinds, tok.Kind)
		}
	}
	want := []Kind{IDENT, PLUSEQ, INT, MINUSEQ, INT, EQ, INT, NE, INT, LE, INT, GE, INT, ANDAND, FALSE, OROR, TRUE, EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], k)
		}
	}
}

func TestLexerNewlinesAreSignificant(t *testing.T) {
	toks := lexAll(t, "a = 1\nb = 2")
	var sawNewline bool
	for _, tok := range toks {
		if tok.Kind == NEWLINE {
			sawNewline = true
		}
	}
	if !sawNewline {
		t.Fatal("expected a NEWLINE token between statements")
	}
}

func TestLexerStringKeepsInterpolationMarkersRaw(t *testing.T) {
	toks := lexAll(t, `"hello $name and ${1 + 2}"`)
	if len(toks) < 1 || toks[0].Kind != STRING {
		t.Fatalf("expected a STRING token, got %v", toks)
	}
	if toks[0].Text != `hello $name and ${1 + 2}` {
		t.Errorf("got %q, want the raw interpolation markers preserved", toks[0].Text)
	}
}

func TestLexerUnterminatedStringIsAnError(t *testing.T) {
	l := newLexer("test", `"unterminated`)
	if _, err := l.Next(); err == nil {
		t.Fatal("expected an unterminated string literal error")
	}
}

func TestLexerCommentIsBufferedNotEmitted(t *testing.T) {
	l := newLexer("test", "# a comment\nident")
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("lexer error: %v", err)
		}
		if tok.Kind == IDENT {
			break
		}
		if tok.Kind != NEWLINE {
			t.Fatalf("expected only a newline before the identifier, got %s", tok.Kind)
		}
	}
	if c := l.TakeComment(); len(c) != 1 || c[0] != "a comment" {
		t.Errorf("got comment %v, want [\"a comment\"]", c)
	}
}

func TestLexerKeywordsVsIdentifiers(t *testing.T) {
	toks := lexAll(t, "if else true false iffy")
	want := []Kind{IF, ELSE, TRUE, FALSE, IDENT, EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}
