package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoryRoutes(h *Handlers) func(*gin.RouterGroup) {
	return func(g *gin.RouterGroup) {
		g.PUT("/categories/:id", h.UpdateCategory)
		g.DELETE("/categories/:id", h.DeleteCategory)
	}
}

// expectCategoryOwner queues the category-to-owner lookup.
func expectCategoryOwner(mock sqlmock.Sqlmock, categoryID, ownerID int64) {
	mock.ExpectQuery("JOIN businesses b ON c.business_id = b.id").
		WithArgs(categoryID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(ownerID))
}

func TestUpdateCategoryPatchesFields(t *testing.T) {
	h, mock := newMockHandlers(t)

	expectCategoryOwner(mock, 7, testSellerID)
	mock.ExpectExec("UPDATE categories SET").
		WithArgs("Fabrics", nil, nil, 3, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM categories c WHERE c.id =").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "business_id", "name", "description", "icon", "sort_order", "created_at", "product_count",
		}).AddRow(7, 3, "Fabrics", nil, nil, 3, time.Now(), 12))

	w := serve(testSellerID, http.MethodPut, "/categories/7",
		`{"name":"Fabrics","sortOrder":3}`, categoryRoutes(h))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Fabrics"`)
	assert.Contains(t, w.Body.String(), `"productCount":12`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCategoryNotFound(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectQuery("JOIN businesses b ON c.business_id = b.id").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	w := serve(testSellerID, http.MethodPut, "/categories/99", `{"name":"X"}`, categoryRoutes(h))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Category not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCategoryForbiddenForNonOwner(t *testing.T) {
	h, mock := newMockHandlers(t)

	expectCategoryOwner(mock, 7, testSellerID)

	w := serve(testBuyerID, http.MethodPut, "/categories/7", `{"name":"X"}`, categoryRoutes(h))

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Forbidden")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategory(t *testing.T) {
	h, mock := newMockHandlers(t)

	expectCategoryOwner(mock, 7, testSellerID)
	mock.ExpectExec("DELETE FROM categories WHERE id =").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := serve(testSellerID, http.MethodDelete, "/categories/7", "", categoryRoutes(h))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	require.NoError(t, mock.ExpectationsWereMet())
}
