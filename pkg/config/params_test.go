package config

import (
	"errors"
	"strings"
	"testing"
)

func TestParamsRequiredAndDefaults(t *testing.T) {
	p := NewParams("lag", MustTable("periods", []int{1, 3}, "columns", []string{"a"}))
	periods, err := p.Ints("periods")
	if err != nil || len(periods) != 2 || periods[1] != 3 {
		t.Fatalf("periods = %v, %v", periods, err)
	}
	cols, err := p.StringsOr("columns", nil)
	if err != nil || len(cols) != 1 {
		t.Fatalf("columns = %v, %v", cols, err)
	}
	fill, err := p.FloatOr("fill", 1.5)
	if err != nil || fill != 1.5 {
		t.Fatalf("fill = %v, %v", fill, err)
	}
	if err := p.CheckUnused(); err != nil {
		t.Fatal(err)
	}
}

func TestParamsErrors(t *testing.T) {
	p := NewParams("lag", MustTable("period", 1, "window", "x"))

	_, err := p.Ints("periods")
	var me *MissingParameterError
	if !errors.As(err, &me) || me.Field != "periods" || me.Op != "lag" {
		t.Fatalf("err = %v", err)
	}

	_, err = p.Int("window")
	var tm *TypeMismatchError
	if !errors.As(err, &tm) || tm.Expected != "integer" || tm.Got != "string" {
		t.Fatalf("err = %v", err)
	}

	err = p.CheckUnused()
	var ue *UnknownParameterError
	if !errors.As(err, &ue) || ue.Field != "period" || ue.Suggestion != "periods" {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "periods"`) {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestFloatAcceptsInteger(t *testing.T) {
	p := NewParams("clip", MustTable("min", 0))
	v, err := p.OptionalFloat("min")
	if err != nil || v == nil || *v != 0 {
		t.Fatalf("min = %v, %v", v, err)
	}
	v, err = p.OptionalFloat("max")
	if err != nil || v != nil {
		t.Fatalf("max = %v, %v", v, err)
	}
}

func TestLocate(t *testing.T) {
	err := error(&MissingParameterError{Position: NoPosition, Op: "lag", Field: "periods"})
	err = Locate(err, Position{Index: 2, Line: 14})
	want := `operations[2] (line 14): lag: missing required parameter "periods"`
	if err.Error() != want {
		t.Fatalf("got %q", err.Error())
	}
	// an already located error keeps its position
	err = Locate(err, Position{Index: 5})
	if !strings.HasPrefix(err.Error(), "operations[2]") {
		t.Fatalf("got %q", err.Error())
	}

	// other errors are wrapped and stay matchable
	plain := errors.New("window must be positive")
	err = Locate(plain, Position{Index: 1, Line: 4})
	var pe *PositionedError
	if !errors.As(err, &pe) || pe.Index != 1 || pe.Line != 4 || !errors.Is(err, plain) {
		t.Fatalf("got %#v", err)
	}
	if err.Error() != "operations[1] (line 4): window must be positive" {
		t.Fatalf("got %q", err.Error())
	}
	if Locate(plain, NoPosition) != plain {
		t.Fatal("an error without a position should pass through")
	}
}

func TestMissingParameterNamesTypo(t *testing.T) {
	err := &MissingParameterError{Position: Position{Index: 1, Line: 4}, Op: "lag", Field: "periods", Found: "period"}
	want := `operations[1] (line 4): lag: missing required parameter "periods" (found "period"; did you mean "periods"?)`
	if err.Error() != want {
		t.Fatalf("got %q", err.Error())
	}
}

func TestSuggest(t *testing.T) {
	cases := []struct {
		word string
		want string
	}{
		{"standardise", "standardize"},
		{"lagg", "lag"},
		{"resample_everything", ""},
	}
	known := []string{"fill_null", "lag", "standardize", "resample"}
	for _, c := range cases {
		if got := Suggest(c.word, known); got != c.want {
			t.Errorf("Suggest(%q) = %q, want %q", c.word, got, c.want)
		}
	}
}
