package lexer

import "testing"

func collect(t *testing.T, src string) []Token {
	t.Helper()
	var toks []Token
	for tok := range New(src, 0) {
		toks = append(toks, tok)
		if tok.Type == ItemEOF || tok.Type == ItemError {
			break
		}
	}
	return toks
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	toks := collect(t, "SELECT payload.version FROM \"/t\"")
	want := []TokenType{ItemSelect, ItemIdentifier, ItemDot, ItemIdentifier, ItemFrom, ItemQuotedIdent, ItemEOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, tt)
		}
	}
}

func TestLexNumbers(t *testing.T) {
	cases := []string{"5", "-5", "5.5", "1e3"}
	for _, c := range cases {
		toks := collect(t, c)
		if c == "-5" {
			if toks[0].Type != ItemMinus || toks[1].Type != ItemNumber {
				t.Errorf("lexing %q: got %v", c, toks)
			}
			continue
		}
		if toks[0].Type != ItemNumber || toks[0].Text != c {
			t.Errorf("lexing %q: got %+v", c, toks[0])
		}
	}
}

func TestLexQuotedIdentAndString(t *testing.T) {
	toks := collect(t, `"abc" 'xyz'`)
	if toks[0].Type != ItemQuotedIdent || toks[0].Text != "abc" {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[1].Type != ItemString || toks[1].Text != "xyz" {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestLexOperators(t *testing.T) {
	toks := collect(t, "<= >= < > = + - * / !")
	want := []TokenType{ItemLte, ItemGte, ItemLt, ItemGt, ItemEq, ItemPlus, ItemMinus, ItemStar, ItemSlash, ItemBang, ItemEOF}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, tt)
		}
	}
}

func TestLexUnterminatedStringErrors(t *testing.T) {
	toks := collect(t, "'abc")
	if toks[0].Type != ItemError {
		t.Fatalf("expected lexer error, got %+v", toks[0])
	}
}
