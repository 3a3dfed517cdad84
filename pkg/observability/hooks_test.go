package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	g := NoopGraphHooks{}
	g.OnBuildStart(ctx, "have-cake", 2, 2)
	g.OnBuildComplete(ctx, "have-cake", 3, true, time.Millisecond, nil)
	g.OnHeuristic(ctx, "setlevel", 2, time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "heuristic")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "heuristic", 128)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/evaluate")
	h.OnResponse(ctx, "POST", "/v1/evaluate", 200, time.Millisecond)
	h.OnError(ctx, "POST", "/v1/evaluate", errors.New("boom"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Graph().(NoopGraphHooks); !ok {
		t.Error("Graph() should return NoopGraphHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customGraph := &testGraphHooks{}
	SetGraphHooks(customGraph)
	if Graph() != customGraph {
		t.Error("SetGraphHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Graph().(NoopGraphHooks); !ok {
		t.Error("Reset() should restore NoopGraphHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testGraphHooks{}
	SetGraphHooks(custom)
	SetGraphHooks(nil)

	if Graph() != custom {
		t.Error("SetGraphHooks(nil) should be ignored")
	}
}

type testGraphHooks struct{ NoopGraphHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
