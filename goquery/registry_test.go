package goquery_test

import (
	"testing"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/goquery"
	"github.com/fwojciec/docdex/mock"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("Get returns the registered reducer", func(t *testing.T) {
		t.Parallel()

		notebook := &mock.SectionReducer{NameFn: func() string { return "notebook" }}
		registry := goquery.NewRegistry(&mock.PageKindDetector{}, &mock.SectionReducer{})
		registry.Register(docdex.PageKindNotebook, notebook)

		assert.Same(t, notebook, registry.Get(docdex.PageKindNotebook))
		assert.Nil(t, registry.Get(docdex.PageKindBook))
	})

	t.Run("GetForHTML routes via the detector", func(t *testing.T) {
		t.Parallel()

		detector := &mock.PageKindDetector{
			DetectFn: func(html string) docdex.PageKind { return docdex.PageKindNotebook },
		}
		notebook := &mock.SectionReducer{NameFn: func() string { return "notebook" }}
		registry := goquery.NewRegistry(detector, &mock.SectionReducer{})
		registry.Register(docdex.PageKindNotebook, notebook)

		assert.Same(t, notebook, registry.GetForHTML("<html></html>"))
	})

	t.Run("GetForHTML falls back for unknown kinds", func(t *testing.T) {
		t.Parallel()

		detector := &mock.PageKindDetector{
			DetectFn: func(html string) docdex.PageKind { return docdex.PageKindUnknown },
		}
		fallback := &mock.SectionReducer{NameFn: func() string { return "book" }}
		registry := goquery.NewRegistry(detector, fallback)

		assert.Same(t, fallback, registry.GetForHTML("<html></html>"))
	})

	t.Run("List returns registered kinds", func(t *testing.T) {
		t.Parallel()

		registry := goquery.NewRegistry(&mock.PageKindDetector{}, &mock.SectionReducer{})
		registry.Register(docdex.PageKindBook, &mock.SectionReducer{})
		registry.Register(docdex.PageKindNotebook, &mock.SectionReducer{})

		assert.ElementsMatch(t,
			[]docdex.PageKind{docdex.PageKindBook, docdex.PageKindNotebook},
			registry.List())
	})
}
