package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storeadmin "github.com/kenyaconnect/storefront/admin"
	"github.com/kenyaconnect/storefront/models"
	"github.com/kenyaconnect/storefront/notify"
	"github.com/kenyaconnect/storefront/storage"
)

// --- Mock Editor ---

type MockEditor struct {
	Records []models.Product
	ListErr error
	SaveErr error

	LastSaved   *storeadmin.Record
	LastDeleted string
	Confirmed   bool
}

func (m *MockEditor) List(ctx context.Context) ([]models.Product, error) {
	return m.Records, m.ListErr
}

func (m *MockEditor) Get(ctx context.Context, id string) (*models.Product, error) {
	for i := range m.Records {
		if m.Records[i].ID == id {
			return &m.Records[i], nil
		}
	}
	return nil, storeadmin.ErrRecordNotFound
}

func (m *MockEditor) Save(ctx context.Context, r storeadmin.Record) (*models.Product, error) {
	m.LastSaved = &r
	if m.SaveErr != nil {
		notify.FromContext(ctx).Notify(notify.Notice{Severity: notify.Error, Title: m.SaveErr.Error()})
		return nil, m.SaveErr
	}
	id := r.ID
	if id == "" {
		id = "prod_1"
	}
	notify.FromContext(ctx).Notify(notify.Notice{Severity: notify.Success, Title: "Product added successfully!"})
	return &models.Product{ID: id, Name: r.Name, Price: r.Price, Category: r.Category, Images: r.Images}, nil
}

func (m *MockEditor) Delete(ctx context.Context, id string, confirm storeadmin.Confirmer) error {
	m.LastDeleted = id
	m.Confirmed = confirm(id)
	if !m.Confirmed {
		return storeadmin.ErrDeleteNotConfirmed
	}
	notify.FromContext(ctx).Notify(notify.Notice{Severity: notify.Success, Title: "Product deleted successfully!"})
	return nil
}

// --- Tests ---

func TestHandleList(t *testing.T) {
	testCases := []struct {
		name               string
		editor             *MockEditor
		expectedStatusCode int
		expectedTotal      int
	}{
		{
			name: "Success",
			editor: &MockEditor{Records: []models.Product{
				{ID: "prod_1", Name: "Soapstone Bowl", Price: 1800},
				{ID: "prod_2", Name: "Kiondo Basket", Price: 3200},
			}},
			expectedStatusCode: http.StatusOK,
			expectedTotal:      2,
		},
		{
			name:               "Empty store",
			editor:             &MockEditor{},
			expectedStatusCode: http.StatusOK,
			expectedTotal:      0,
		},
		{
			name:               "Storage error",
			editor:             &MockEditor{ListErr: errors.New("connection refused")},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			NewAdminHandler(tc.editor, nil).HandleList(rec, httptest.NewRequest("GET", "/admin/products", nil))

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedStatusCode == http.StatusOK {
				var resp ListResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tc.expectedTotal, resp.Total)
				assert.Len(t, resp.Products, tc.expectedTotal)
			}
		})
	}
}

func TestHandleGet(t *testing.T) {
	h := NewAdminHandler(&MockEditor{Records: []models.Product{{ID: "prod_1", Name: "Soapstone Bowl"}}}, nil)

	req := httptest.NewRequest("GET", "/admin/products/prod_1", nil)
	req.SetPathValue("id", "prod_1")
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("GET", "/admin/products/missing", nil)
	req.SetPathValue("id", "missing")
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		requestBody        string
		saveErr            error
		expectedStatusCode int
		expectedError      string
		checkEditorCall    func(t *testing.T, e *MockEditor)
	}{
		{
			name:               "Success",
			requestBody:        `{"name":"Soapstone Bowl","price":1800,"category":"crafts","images":["https://example.com/bowl.jpg"]}`,
			expectedStatusCode: http.StatusCreated,
			checkEditorCall: func(t *testing.T, e *MockEditor) {
				require.NotNil(t, e.LastSaved)
				assert.Equal(t, "Soapstone Bowl", e.LastSaved.Name)
			},
		},
		{
			name:               "Client supplied id is ignored",
			requestBody:        `{"id":"prod_99","name":"Soapstone Bowl","price":1800,"category":"crafts","images":["x"]}`,
			expectedStatusCode: http.StatusCreated,
			checkEditorCall: func(t *testing.T, e *MockEditor) {
				assert.Empty(t, e.LastSaved.ID)
			},
		},
		{
			name:               "Invalid JSON body",
			requestBody:        `{invalid json`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid JSON body",
			checkEditorCall: func(t *testing.T, e *MockEditor) {
				assert.Nil(t, e.LastSaved, "Save should not be called with invalid JSON")
			},
		},
		{
			name:               "Invalid record",
			requestBody:        `{"name":""}`,
			saveErr:            &storeadmin.RecordError{Message: "Please fill in all required fields"},
			expectedStatusCode: http.StatusUnprocessableEntity,
			expectedError:      "Please fill in all required fields",
		},
		{
			name:               "Storage error",
			requestBody:        `{"name":"Soapstone Bowl","price":1800,"category":"crafts","images":["x"]}`,
			saveErr:            errors.New("disk full"),
			expectedStatusCode: http.StatusInternalServerError,
			expectedError:      "Failed to save product",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			editor := &MockEditor{SaveErr: tc.saveErr}
			handler := NewAdminHandler(editor, nil)
			req := httptest.NewRequest("POST", "/admin/products", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			// Act
			handler.HandleCreate(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedError != "" {
				var errResp struct {
					Error string `json:"error"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, tc.expectedError, errResp.Error)
			}
			if tc.checkEditorCall != nil {
				tc.checkEditorCall(t, editor)
			}
		})
	}
}

func TestHandleUpdateUsesPathID(t *testing.T) {
	editor := &MockEditor{}
	req := httptest.NewRequest("PUT", "/admin/products/prod_7",
		strings.NewReader(`{"id":"other","name":"Kikoy","price":1500,"category":"textiles","images":["x"]}`))
	req.SetPathValue("id", "prod_7")
	rec := httptest.NewRecorder()

	NewAdminHandler(editor, nil).HandleUpdate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "prod_7", editor.LastSaved.ID)
	var resp RecordResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "prod_7", resp.Product.ID)
}

func TestHandleDelete(t *testing.T) {
	testCases := []struct {
		name               string
		url                string
		expectedStatusCode int
		expectedConfirmed  bool
	}{
		{name: "Without confirmation", url: "/admin/products/prod_1", expectedStatusCode: http.StatusConflict},
		{name: "Confirmation declined", url: "/admin/products/prod_1?confirm=false", expectedStatusCode: http.StatusConflict},
		{name: "Confirmed", url: "/admin/products/prod_1?confirm=true", expectedStatusCode: http.StatusOK, expectedConfirmed: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			editor := &MockEditor{}
			req := httptest.NewRequest("DELETE", tc.url, nil)
			req.SetPathValue("id", "prod_1")
			rec := httptest.NewRecorder()

			NewAdminHandler(editor, nil).HandleDelete(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, "prod_1", editor.LastDeleted)
			assert.Equal(t, tc.expectedConfirmed, editor.Confirmed)
		})
	}
}

// End to end against the real editor on an in-memory store.
func TestAdminRoundTrip(t *testing.T) {
	h := NewAdminHandler(storeadmin.NewEditor(storage.NewMemoryKV(), nil), nil)

	create := httptest.NewRequest("POST", "/admin/products",
		strings.NewReader(`{"name":"Soapstone Bowl","price":1800,"category":"crafts","images":["a.jpg\nb.jpg"]}`))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, create)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created RecordResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	id := created.Product.ID
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, created.Product.Images)
	assert.Equal(t, 4.5, created.Product.Rating)
	require.Len(t, created.Notices, 1)
	assert.Equal(t, "Product added successfully!", created.Notices[0].Title)

	del := httptest.NewRequest("DELETE", "/admin/products/"+id+"?confirm=true", nil)
	del.SetPathValue("id", id)
	rec = httptest.NewRecorder()
	h.HandleDelete(rec, del)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest("GET", "/admin/products", nil))
	var list ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, 0, list.Total)
}
