package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/fieldquery/internal/schema"
)

// Expectation kinds, used to categorize failures.
const (
	ExpectIDs    = "ids"
	ExpectCount  = "count"
	ExpectFields = "fields"
	ExpectError  = "error"
)

// AssertionError is returned when an expectation does not hold.
type AssertionError struct {
	Type     string // Expectation kind for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expectation failed: %s: expected %s, actual %s", e.Type, e.Expected, e.Actual)
}

// EvaluateExpectation checks a response against the request's expect
// clause and returns one message per failed expectation. Without an
// expect clause the request only has to succeed.
func EvaluateExpectation(step RequestStep, resp Response) []string {
	exp := step.Expect
	if exp == nil {
		exp = &ExpectClause{}
	}

	if err := assertError(exp, resp); err != nil {
		return []string{err.Error()}
	}
	if resp.Error != nil {
		// Expected failure; nothing else to compare.
		return nil
	}

	var errs []string
	for _, check := range []func(*ExpectClause, Response) error{assertIDs, assertCount, assertFields} {
		if err := check(exp, resp); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertError(exp *ExpectClause, resp Response) error {
	switch {
	case exp.Error == "" && resp.Error != nil:
		return &AssertionError{
			Type:     ExpectError,
			Expected: "success",
			Actual:   fmt.Sprintf("%s (%s)", resp.Error.Code, resp.Error.Message),
		}
	case exp.Error != "" && resp.Error == nil:
		return &AssertionError{Type: ExpectError, Expected: exp.Error, Actual: "success"}
	case exp.Error != "" && resp.Error.Code != exp.Error:
		return &AssertionError{
			Type:     ExpectError,
			Expected: exp.Error,
			Actual:   fmt.Sprintf("%s (%s)", resp.Error.Code, resp.Error.Message),
		}
	}
	return nil
}

// assertIDs compares identities in order. Values are compared by their
// printed form, so YAML integers match int64 identities.
func assertIDs(exp *ExpectClause, resp Response) error {
	if exp.IDs == nil {
		return nil
	}
	want := formatValues(exp.IDs)
	got := formatValues(resp.IDs)
	if !equalStrings(want, got) {
		return &AssertionError{
			Type:     ExpectIDs,
			Expected: "[" + strings.Join(want, " ") + "]",
			Actual:   "[" + strings.Join(got, " ") + "]",
		}
	}
	return nil
}

func assertCount(exp *ExpectClause, resp Response) error {
	if exp.Count == nil {
		return nil
	}
	if resp.Count == nil || *resp.Count != *exp.Count {
		actual := "none"
		if resp.Count != nil {
			actual = fmt.Sprint(*resp.Count)
		}
		return &AssertionError{Type: ExpectCount, Expected: fmt.Sprint(*exp.Count), Actual: actual}
	}
	return nil
}

// assertFields checks that every item has exactly the expected populated
// fields. Only records expose which fields are populated.
func assertFields(exp *ExpectClause, resp Response) error {
	if exp.Fields == nil {
		return nil
	}
	want := append([]string(nil), exp.Fields...)
	sort.Strings(want)

	for i, item := range resp.Items {
		rec, ok := item.(*schema.Record)
		if !ok {
			return &AssertionError{
				Type:     ExpectFields,
				Expected: "record items",
				Actual:   fmt.Sprintf("%T", item),
			}
		}
		got := make([]string, 0, len(rec.Fields))
		for name := range rec.Fields {
			got = append(got, name)
		}
		sort.Strings(got)
		if !equalStrings(want, got) {
			return &AssertionError{
				Type:     ExpectFields,
				Expected: "[" + strings.Join(want, " ") + "]",
				Actual:   fmt.Sprintf("[%s] at item %d", strings.Join(got, " "), i),
			}
		}
	}
	return nil
}

func formatValues(vs []any) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
