package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/database/mock"
	"github.com/facegate/facegate/internal/embedding"
)

func newPeopleFixture(t *testing.T, ext *stubExtractor, repo *mock.PersonRepository) (*PeopleHandler, *database.IndexSet) {
	t.Helper()
	indexes := builtIndexSet(t, repo)
	stats := NewStatsHandler(repo, mock.NewLogRepository(), indexes, ext.Family())
	return NewPeopleHandler(repo, ext, testThresholds(), indexes, stats), indexes
}

func TestPeopleList(t *testing.T) {
	repo := mock.NewPersonRepository()
	seedPerson(t, repo, "Alice", "XX1", []float32{1, 0, 0})
	seedPerson(t, repo, "Bob", "XX2", []float32{0, 1, 0})
	handler, _ := newPeopleFixture(t, &stubExtractor{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/people", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp struct {
		Count  int             `json:"count"`
		People []PersonSummary `json:"people"`
	}
	parseJSONResponse(t, rec, &resp)
	if resp.Count != 2 || len(resp.People) != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	// Insertion order is preserved.
	if resp.People[0].Name != "Alice" || resp.People[1].Name != "Bob" {
		t.Errorf("people = %+v, want Alice then Bob", resp.People)
	}
}

func TestPeopleGet(t *testing.T) {
	repo := mock.NewPersonRepository()
	id := seedPerson(t, repo, "Alice", "XX1", []float32{1, 0, 0})
	handler, _ := newPeopleFixture(t, &stubExtractor{}, repo)

	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/people/"+id, nil), map[string]string{"id": id})
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var detail PersonDetail
	parseJSONResponse(t, rec, &detail)
	if detail.ID != id || detail.Name != "Alice" || detail.IDCardNumber != "XX1" {
		t.Errorf("detail = %+v", detail)
	}
}

func TestPeopleGetNotFound(t *testing.T) {
	handler, _ := newPeopleFixture(t, &stubExtractor{}, mock.NewPersonRepository())

	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/people/nope", nil), map[string]string{"id": "nope"})
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assertStatusCode(t, rec, http.StatusNotFound)
}

func TestPeopleDelete(t *testing.T) {
	repo := mock.NewPersonRepository()
	id := seedPerson(t, repo, "Alice", "XX1", []float32{1, 0, 0})
	handler, indexes := newPeopleFixture(t, &stubExtractor{}, repo)

	req := requestWithChiParams(httptest.NewRequest(http.MethodDelete, "/api/v1/people/"+id, nil), map[string]string{"id": id})
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	assertStatusCode(t, rec, http.StatusNoContent)

	if _, err := repo.Get(context.Background(), id); err == nil {
		t.Error("person still present after delete")
	}
	if indexes.Sizes()["stub"] != 0 {
		t.Error("person still indexed after delete")
	}
}

func TestPeopleDeleteNotFound(t *testing.T) {
	handler, _ := newPeopleFixture(t, &stubExtractor{}, mock.NewPersonRepository())

	req := requestWithChiParams(httptest.NewRequest(http.MethodDelete, "/api/v1/people/nope", nil), map[string]string{"id": "nope"})
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	assertStatusCode(t, rec, http.StatusNotFound)
}

func TestUpdatePhotoReplacesEmbedding(t *testing.T) {
	repo := mock.NewPersonRepository()
	id := seedPerson(t, repo, "Alice", "XX1", []float32{1, 0, 0})
	ext := &stubExtractor{dets: []embedding.Detection{stubDetection([]float32{0, 1, 0})}}
	handler, _ := newPeopleFixture(t, ext, repo)

	req := multipartRequest(t, http.MethodPut, "/api/v1/people/"+id+"/photo", "photo", testJPEG(t), nil)
	req = requestWithChiParams(req, map[string]string{"id": id})
	rec := httptest.NewRecorder()
	handler.UpdatePhoto(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	stored, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("person missing: %v", err)
	}
	if stored.Embedding[0] != 0 || stored.Embedding[1] != 1 {
		t.Errorf("embedding = %v, want replaced with {0,1,0}", stored.Embedding)
	}
}

func TestUpdatePhotoDuplicateOfOtherPerson(t *testing.T) {
	repo := mock.NewPersonRepository()
	aliceID := seedPerson(t, repo, "Alice", "XX1", []float32{1, 0, 0})
	bobID := seedPerson(t, repo, "Bob", "XX2", []float32{0, 1, 0})
	// Bob's new photo carries Alice's face.
	ext := &stubExtractor{dets: []embedding.Detection{stubDetection([]float32{1, 0, 0})}}
	handler, _ := newPeopleFixture(t, ext, repo)

	req := multipartRequest(t, http.MethodPut, "/api/v1/people/"+bobID+"/photo", "photo", testJPEG(t), nil)
	req = requestWithChiParams(req, map[string]string{"id": bobID})
	rec := httptest.NewRecorder()
	handler.UpdatePhoto(rec, req)

	assertStatusCode(t, rec, http.StatusConflict)

	var resp DuplicateResponse
	parseJSONResponse(t, rec, &resp)
	if resp.PersonID != aliceID {
		t.Errorf("conflict person = %s, want Alice %s", resp.PersonID, aliceID)
	}
}

func TestUpdatePhotoKeepsOwnFace(t *testing.T) {
	// Re-uploading a photo of the same person must not trip the guard.
	repo := mock.NewPersonRepository()
	id := seedPerson(t, repo, "Alice", "XX1", []float32{1, 0, 0})
	ext := &stubExtractor{dets: []embedding.Detection{stubDetection([]float32{1, 0, 0})}}
	handler, _ := newPeopleFixture(t, ext, repo)

	req := multipartRequest(t, http.MethodPut, "/api/v1/people/"+id+"/photo", "photo", testJPEG(t), nil)
	req = requestWithChiParams(req, map[string]string{"id": id})
	rec := httptest.NewRecorder()
	handler.UpdatePhoto(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
}

func TestSimilarExcludesSelf(t *testing.T) {
	repo := mock.NewPersonRepository()
	id := seedPerson(t, repo, "Alice", "XX1", []float32{1, 0, 0})
	seedPerson(t, repo, "Bob", "XX2", []float32{0.9, 0.1, 0})
	seedPerson(t, repo, "Carol", "XX3", []float32{0, 0, 1})
	handler, _ := newPeopleFixture(t, &stubExtractor{}, repo)

	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/people/"+id+"/similar?limit=2", nil), map[string]string{"id": id})
	rec := httptest.NewRecorder()
	handler.Similar(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp struct {
		PersonID string          `json:"person_id"`
		Similar  []SimilarPerson `json:"similar"`
	}
	parseJSONResponse(t, rec, &resp)
	if len(resp.Similar) == 0 {
		t.Fatal("expected similar people")
	}
	for _, s := range resp.Similar {
		if s.ID == id {
			t.Error("similar results must exclude the person themselves")
		}
	}
	if resp.Similar[0].Name != "Bob" {
		t.Errorf("most similar = %s, want Bob", resp.Similar[0].Name)
	}
}

func TestSimilarBadLimit(t *testing.T) {
	repo := mock.NewPersonRepository()
	id := seedPerson(t, repo, "Alice", "XX1", []float32{1, 0, 0})
	handler, _ := newPeopleFixture(t, &stubExtractor{}, repo)

	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/people/"+id+"/similar?limit=zero", nil), map[string]string{"id": id})
	rec := httptest.NewRecorder()
	handler.Similar(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
}
