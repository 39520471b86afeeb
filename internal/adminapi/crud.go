package adminapi

import (
	"net/http"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/labstack/echo/v4"
)

// resource wires list/get/create/update/delete for one collection
type resource[T any, K comparable] struct {
	collection domain.Collection
	repo       func(*repository.Set) repository.Repository[T, K]
	parseID    func(string) (K, error)
	setID      func(*T, K)
	// defaults fills fields a create payload may omit, before validation
	defaults func(*T)
}

func (r resource[T, K]) path() string {
	return "/" + string(r.collection)
}

func (r resource[T, K]) keys() (string, string) {
	return repository.EnvelopeKeys(r.collection)
}

func (r resource[T, K]) register() {
	webserver.ApiGET(r.path(), r.list)
	webserver.ApiGET(r.path()+"/:id", r.get)
	webserver.ApiPOST(r.path(), r.create)
	webserver.ApiPUT(r.path()+"/:id", r.update)
	webserver.ApiDELETE(r.path()+"/:id", r.delete)
}

// id parses the path id; on failure the 400 response is already written
func (r resource[T, K]) id(c echo.Context) (K, bool) {
	id, err := r.parseID(c.Param("id"))
	if err != nil {
		_ = fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+string(r.collection)+" ID", nil)
		return id, false
	}
	return id, true
}

func (r resource[T, K]) list(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return err
	}
	rows, total, err := r.repo(GetRepos(c)).List(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err, "Failed to query "+string(r.collection))
	}
	_, many := r.keys()
	return paged(c, many, rows, total, f)
}

func (r resource[T, K]) get(c echo.Context) error {
	id, valid := r.id(c)
	if !valid {
		return nil
	}
	item, err := r.repo(GetRepos(c)).Get(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err, "Failed to get "+string(r.collection))
	}
	one, _ := r.keys()
	return ok(c, one, item)
}

// bind decodes and validates the body; on failure the response is already written
func (r resource[T, K]) bind(c echo.Context, item *T) bool {
	if err := c.Bind(item); err != nil {
		_ = fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse "+string(r.collection), err.Error())
		return false
	}
	if r.defaults != nil {
		r.defaults(item)
	}
	if err := c.Validate(item); err != nil {
		_ = failErr(c, err, "Validation failed")
		return false
	}
	return true
}

func (r resource[T, K]) create(c echo.Context) error {
	var item T
	if !r.bind(c, &item) {
		return nil
	}
	created, err := r.repo(GetRepos(c)).Create(c.Request().Context(), item)
	if err != nil {
		return failErr(c, err, "Failed to create "+string(r.collection))
	}
	one, _ := r.keys()
	return ok(c, one, created)
}

func (r resource[T, K]) update(c echo.Context) error {
	id, valid := r.id(c)
	if !valid {
		return nil
	}
	var item T
	if !r.bind(c, &item) {
		return nil
	}
	r.setID(&item, id)
	updated, err := r.repo(GetRepos(c)).Update(c.Request().Context(), item)
	if err != nil {
		return failErr(c, err, "Failed to update "+string(r.collection))
	}
	one, _ := r.keys()
	return ok(c, one, updated)
}

func (r resource[T, K]) delete(c echo.Context) error {
	id, valid := r.id(c)
	if !valid {
		return nil
	}
	if err := r.repo(GetRepos(c)).Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err, "Failed to delete "+string(r.collection))
	}
	return ok(c, "id", id)
}
