package httpsteps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/picklerun/internal/adapter"
	"github.com/vk/picklerun/internal/binder"
	"github.com/vk/picklerun/internal/executor"
	"github.com/vk/picklerun/internal/glossary"
	"github.com/vk/picklerun/internal/pickle"
	"github.com/vk/picklerun/internal/registry"
	"github.com/vk/picklerun/modules/httpcap"
)

func runScenario(t *testing.T, texts ...string) executor.ScenarioResult {
	t.Helper()

	r := registry.New()
	(&Module{}).Register(r)

	adapters := adapter.NewRegistry()
	(&httpcap.Module{}).RegisterAdapters(adapters)

	ifaces := glossary.Interfaces{
		"http": {Type: "rest", Adapter: "httpcap", Config: map[string]any{"timeout": "5s"}},
	}

	steps := make([]pickle.Step, len(texts))
	for i, text := range texts {
		steps[i] = pickle.Step{Text: text}
	}
	p := pickle.Pickle{ID: "http-1", Name: "http scenario", Steps: steps}
	plan := binder.BindPickle(p, r.All())
	require.True(t, plan.Runnable, "every step text must bind")

	e := executor.New(executor.Options{Adapters: adapters, Interfaces: ifaces})
	return e.ExecuteScenario(context.Background(), &plan, nil)
}

func TestModule_GetAndAssertResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"order":"7","state":"shipped"}`)
	}))
	defer srv.Close()

	res := runScenario(t,
		fmt.Sprintf(`client sends a GET to "%s/orders/7"`, srv.URL),
		`the response status is 200`,
		`the response body contains "shipped"`,
	)

	require.Equal(t, executor.StatusPassed, res.Status)
}

func TestModule_StatusMismatchFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	res := runScenario(t,
		fmt.Sprintf(`client sends a GET to "%s/orders/404"`, srv.URL),
		`the response status is 200`,
	)

	require.Equal(t, executor.StatusFailed, res.Status)
	assert.Contains(t, res.Steps[1].Err.Message, "response status is 404, expected 200")
}

func TestModule_AssertionWithoutRequestFails(t *testing.T) {
	t.Parallel()

	res := runScenario(t, `the response status is 200`)

	require.Equal(t, executor.StatusFailed, res.Status)
	assert.Contains(t, res.Steps[0].Err.Message, "no response recorded")
}
