// Copyright (c) 2026 John Earle
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

package facilities

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/campusfm/assetsync/internal/httperr"
)

// recordedRequest captures what the fake Facilities System received.
type recordedRequest struct {
	Method    string
	Path      string
	AccessKey string
	Body      map[string]any
}

// fakeFacilities answers find requests from canned responses keyed by path.
type fakeFacilities struct {
	mu       sync.Mutex
	requests []recordedRequest
	finds    map[string]func(filter map[string]any) any
	status   int
}

func (f *fakeFacilities) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(data) > 0 {
		json.Unmarshal(data, &body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:    r.Method,
		Path:      r.URL.Path,
		AccessKey: r.URL.Query().Get("accesskey"),
		Body:      body,
	})
	f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	if fn, ok := f.finds[r.URL.Path]; ok {
		filter, _ := body["filter"].(map[string]any)
		out, _ := json.Marshal(fn(filter))
		w.Header().Set("Content-Type", "application/json")
		w.Write(out)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (f *fakeFacilities) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeFacilities) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func eqValue(filter map[string]any, field string) any {
	cond, _ := filter[field].(map[string]any)
	return cond["eq"]
}

func newFake(t *testing.T, fake *fakeFacilities) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL + "/",
		AccessKey:  "key-1",
	})
}

func TestResolveLocation(t *testing.T) {
	fake := &fakeFacilities{finds: map[string]func(map[string]any) any{
		"/Property/find": func(f map[string]any) any {
			switch eqValue(f, "Code") {
			case "0012":
				return []Property{{Syscode: 501, Code: "0012"}}
			case "dup":
				return []Property{{Syscode: 1}, {Syscode: 2}}
			}
			return []Property{}
		},
		"/Space/find": func(f map[string]any) any {
			if eqValue(f, "Code") == "101" && eqValue(f, "PropertyRef") == float64(501) {
				return []Space{{Syscode: 9001, Code: "101", PropertyRef: 501}}
			}
			return []Space{}
		},
	}}
	c := newFake(t, fake)
	ctx := context.Background()

	loc, err := c.ResolveLocation(ctx, "0012", "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.PropertyRef != 501 || loc.SpaceRef == nil || *loc.SpaceRef != 9001 {
		t.Errorf("location = %+v", loc)
	}
	if fake.last().AccessKey != "key-1" {
		t.Errorf("accesskey = %q, want key-1", fake.last().AccessKey)
	}

	loc, err = c.ResolveLocation(ctx, "0012", "999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.SpaceRef != nil {
		t.Errorf("unknown space should resolve to nil, got %d", *loc.SpaceRef)
	}

	before := fake.count()
	loc, err = c.ResolveLocation(ctx, "0012", "")
	if err != nil || loc.SpaceRef != nil {
		t.Errorf("empty space: loc=%+v err=%v", loc, err)
	}
	if fake.count() != before+1 {
		t.Error("empty space number should not query spaces")
	}

	for _, code := range []string{"nope", "dup"} {
		_, err := c.ResolveLocation(ctx, code, "101")
		var ame *AmbiguousMatchError
		if !errors.As(err, &ame) {
			t.Errorf("property %q: expected *AmbiguousMatchError, got %v", code, err)
		}
	}
}

func TestCreateAndUpdateAsset(t *testing.T) {
	fake := &fakeFacilities{}
	c := newFake(t, fake)
	ctx := context.Background()

	space := int64(9001)
	group := int64(33)
	comments := "north wall"
	err := c.CreateAsset(ctx, AssetInput{
		Code:         "B12-34",
		Name:         "Network jack B12-34",
		PropertyRef:  501,
		SpaceRef:     &space,
		ItemGroupRef: &group,
		Comments:     &comments,
		Attributes:   &JackAttributes{JackID: "B12-34", CableType: "Cat6"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := fake.last()
	if req.Method != http.MethodPost || req.Path != "/asset" {
		t.Errorf("create request = %s %s", req.Method, req.Path)
	}
	if req.Body["departmentRef"] != float64(DefaultDepartmentRef) {
		t.Errorf("departmentRef = %v", req.Body["departmentRef"])
	}
	if req.Body["isSimple"] != true || req.Body["isArchived"] != false {
		t.Errorf("flags = %v / %v", req.Body["isSimple"], req.Body["isArchived"])
	}
	if req.Body["spaceRef"] != float64(9001) || req.Body["dossier"] != "north wall" {
		t.Errorf("body = %v", req.Body)
	}
	attrs, _ := req.Body["attributes"].(map[string]any)
	if attrs["NSJACKID"] != "B12-34" || attrs["NSCABLETYPE"] != "Cat6" {
		t.Errorf("attributes = %v", attrs)
	}
	if _, ok := attrs["NSLEGACYPATCH"]; ok {
		t.Error("empty legacy patch should be omitted")
	}
	if req.Body["attributeSet"] != float64(1) {
		t.Errorf("attributeSet = %v", req.Body["attributeSet"])
	}

	// No attributes: no attribute block and no crash.
	if err := c.UpdateAsset(ctx, 77, AssetInput{Code: "X", Name: "X", PropertyRef: 501}); err != nil {
		t.Fatalf("update: %v", err)
	}
	req = fake.last()
	if req.Method != http.MethodPut || req.Path != "/asset/77" {
		t.Errorf("update request = %s %s", req.Method, req.Path)
	}
	if _, ok := req.Body["attributes"]; ok {
		t.Error("attributes should be omitted when not given")
	}
	if _, ok := req.Body["spaceRef"]; ok {
		t.Error("spaceRef should be omitted when nil")
	}
}

func TestWriteFailureIsHTTPError(t *testing.T) {
	fake := &fakeFacilities{status: http.StatusConflict}
	c := newFake(t, fake)

	err := c.CreateAsset(context.Background(), AssetInput{Code: "B1-1"})
	if httperr.StatusCode(err) != http.StatusConflict {
		t.Errorf("expected 409 in error chain, got %v", err)
	}

	if n := fake.count(); n != 1 {
		t.Errorf("write should be sent once, got %d requests", n)
	}
}

func TestFindAssetID(t *testing.T) {
	fake := &fakeFacilities{finds: map[string]func(map[string]any) any{
		"/UsrAsset/find": func(f map[string]any) any {
			if eqValue(f, "Code") == "B12-34" {
				return []map[string]any{{"Syscode": 42, "Code": "B12-34"}}
			}
			return []any{}
		},
	}}
	c := newFake(t, fake)

	id, found, err := c.FindAssetID(context.Background(), "B12-34")
	if err != nil || !found || id != 42 {
		t.Errorf("FindAssetID = %d, %v, %v", id, found, err)
	}

	_, found, err = c.FindAssetID(context.Background(), "missing")
	if err != nil || found {
		t.Errorf("missing asset: found=%v err=%v", found, err)
	}
}

func TestMEAssetsAndItemGroups(t *testing.T) {
	fake := &fakeFacilities{finds: map[string]func(map[string]any) any{
		"/UsrMEAsset/find": func(f map[string]any) any {
			return []MEAsset{{Syscode: 7, Code: eqValue(f, "Code").(string), Name: "Pump"}}
		},
		"/ItemGroup/find": func(map[string]any) any {
			return []map[string]any{{"Syscode": 3, "Code": "NJ", "Name": "Network Jack"}}
		},
	}}
	c := newFake(t, fake)
	ctx := context.Background()

	assets, err := c.FindMEAssets(ctx, Where("Code", "0072340").And("Name", "Pump"))
	if err != nil || len(assets) != 1 || assets[0].Code != "0072340" {
		t.Fatalf("FindMEAssets = %+v, %v", assets, err)
	}

	a := assets[0]
	a.LegacyDescription = "EQ-1"
	if err := c.SaveMEAsset(ctx, a); err != nil {
		t.Fatalf("SaveMEAsset: %v", err)
	}
	req := fake.last()
	if req.Method != http.MethodPut || req.Path != "/UsrMEAsset/7" || req.Body["LegacyDescription"] != "EQ-1" {
		t.Errorf("save request = %+v", req)
	}

	groups, err := c.ListItemGroups(ctx)
	if err != nil || len(groups) != 1 || groups[0].Name != "Network Jack" {
		t.Errorf("ListItemGroups = %+v, %v", groups, err)
	}
}

func TestAmbiguousMatchError_Message(t *testing.T) {
	err := &AmbiguousMatchError{Resource: ResourceMEAsset, Filter: Where("Code", "1"), Count: 0}
	want := "expected exactly one UsrMEAsset matching Code=1, found 0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
