package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// DefaultRemoteTimeout bounds every remote call
const DefaultRemoteTimeout = 10 * time.Second

// RemoteError is a failed admin API response
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote api %d: %s", e.Status, e.Message)
}

// Is maps the admin API error codes back onto the domain sentinels
func (e *RemoteError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	case domain.ErrInvalidTransition:
		return e.Code == "INVALID_TRANSITION"
	case domain.ErrConflict:
		return e.Code == "CONFLICT"
	}
	return false
}

// Remote is a client for the admin API of another deployment
type Remote struct {
	base    string
	token   string
	timeout time.Duration
}

func NewRemote(baseURL, token string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &Remote{base: strings.TrimRight(baseURL, "/"), token: token, timeout: timeout}
}

func (c *Remote) url(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.base + "/api/admin/" + strings.Join(escaped, "/")
}

// do performs one call and returns the decoded envelope
func (c *Remote) do(ctx context.Context, method, u string, query gout.H, body interface{}) (map[string]jsoniter.RawMessage, error) {
	var flow *dataflow.DataFlow
	switch method {
	case http.MethodGet:
		flow = gout.GET(u)
	case http.MethodPost:
		flow = gout.POST(u)
	case http.MethodPut:
		flow = gout.PUT(u)
	case http.MethodDelete:
		flow = gout.DELETE(u)
	default:
		return nil, errors.Errorf("unsupported method %s", method)
	}

	var raw []byte
	var code int
	header := gout.H{"Accept": "application/json"}
	if c.token != "" {
		header["Authorization"] = "Bearer " + c.token
	}
	flow = flow.WithContext(ctx).SetTimeout(c.timeout).SetHeader(header)
	if len(query) > 0 {
		flow = flow.SetQuery(query)
	}
	if body != nil {
		flow = flow.SetJSON(body)
	}
	if err := flow.BindBody(&raw).Code(&code).Do(); err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, u)
	}

	env := map[string]jsoniter.RawMessage{}
	if len(raw) > 0 {
		if err := jsoniter.Unmarshal(raw, &env); err != nil {
			return nil, &RemoteError{Status: code, Message: "malformed response: " + err.Error()}
		}
	}
	var ok bool
	if v, found := env["success"]; found {
		_ = jsoniter.Unmarshal(v, &ok)
	}
	if code >= 300 || !ok {
		re := &RemoteError{Status: code}
		if v, found := env["error"]; found {
			_ = jsoniter.Unmarshal(v, &re.Message)
		}
		if v, found := env["code"]; found {
			_ = jsoniter.Unmarshal(v, &re.Code)
		}
		if re.Message == "" {
			re.Message = http.StatusText(code)
		}
		return nil, re
	}
	return env, nil
}

func decodeKey(env map[string]jsoniter.RawMessage, key string, out interface{}) error {
	v, found := env[key]
	if !found {
		return errors.Errorf("response has no %q field", key)
	}
	return errors.Wrapf(jsoniter.Unmarshal(v, out), "decode %s", key)
}

// RemoteRepository serves one collection through the remote admin API
type RemoteRepository[T any, K comparable] struct {
	client *Remote
	e      entity[T, K]
}

var _ Agents = (*RemoteRepository[domain.Agent, int64])(nil)

func (r *RemoteRepository[T, K]) idPath(id K) string {
	return fmt.Sprint(id)
}

func filterQuery(f Filter) gout.H {
	q := gout.H{}
	if f.Query != "" {
		q["q"] = f.Query
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Region != "" {
		q["region"] = f.Region
	}
	if f.Featured != nil {
		q["featured"] = strconv.FormatBool(*f.Featured)
	}
	if !f.From.IsZero() {
		q["from"] = today(f.From)
	}
	if !f.To.IsZero() {
		q["to"] = today(f.To)
	}
	if f.Sort != "" {
		q["sort"] = f.Sort
	}
	if f.Desc {
		q["order"] = "desc"
	}
	if f.PageSize > 0 {
		q["page"] = strconv.Itoa(f.Page)
		q["perPage"] = strconv.Itoa(f.PageSize)
	}
	return q
}

func (r *RemoteRepository[T, K]) List(ctx context.Context, f Filter) ([]T, int64, error) {
	env, err := r.client.do(ctx, http.MethodGet, r.client.url(string(r.e.name)), filterQuery(f), nil)
	if err != nil {
		return nil, 0, err
	}
	items := make([]T, 0)
	if err := decodeKey(env, r.e.many, &items); err != nil {
		return nil, 0, err
	}
	total := int64(len(items))
	if v, found := env["total"]; found {
		_ = jsoniter.Unmarshal(v, &total)
	}
	return items, total, nil
}

func (r *RemoteRepository[T, K]) one(env map[string]jsoniter.RawMessage, err error) (T, error) {
	var item T
	if err != nil {
		return item, err
	}
	return item, decodeKey(env, r.e.one, &item)
}

func (r *RemoteRepository[T, K]) Get(ctx context.Context, id K) (T, error) {
	return r.one(r.client.do(ctx, http.MethodGet, r.client.url(string(r.e.name), r.idPath(id)), nil, nil))
}

func (r *RemoteRepository[T, K]) Create(ctx context.Context, item T) (T, error) {
	return r.one(r.client.do(ctx, http.MethodPost, r.client.url(string(r.e.name)), nil, item))
}

func (r *RemoteRepository[T, K]) Update(ctx context.Context, item T) (T, error) {
	return r.one(r.client.do(ctx, http.MethodPut, r.client.url(string(r.e.name), r.idPath(r.e.id(item))), nil, item))
}

func (r *RemoteRepository[T, K]) Delete(ctx context.Context, id K) error {
	_, err := r.client.do(ctx, http.MethodDelete, r.client.url(string(r.e.name), r.idPath(id)), nil, nil)
	return err
}

type reviewRequest struct {
	ReviewedBy string `json:"reviewedBy"`
	Notes      string `json:"notes"`
}

type remoteReviewer struct {
	repo *RemoteRepository[domain.Registration, int64]
}

func (r remoteReviewer) Approve(ctx context.Context, id int64, reviewedBy, notes string) (domain.Registration, error) {
	return r.review(ctx, id, "approve", reviewedBy, notes)
}

func (r remoteReviewer) Reject(ctx context.Context, id int64, reviewedBy, notes string) (domain.Registration, error) {
	return r.review(ctx, id, "reject", reviewedBy, notes)
}

func (r remoteReviewer) review(ctx context.Context, id int64, action, reviewedBy, notes string) (domain.Registration, error) {
	u := r.repo.client.url(string(domain.CollectionRegistrations), strconv.FormatInt(id, 10), action)
	return r.repo.one(r.repo.client.do(ctx, http.MethodPost, u, nil, reviewRequest{ReviewedBy: reviewedBy, Notes: notes}))
}

type remoteOrderStatus struct {
	repo *RemoteRepository[domain.Order, string]
}

func (r remoteOrderStatus) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	u := r.repo.client.url(string(domain.CollectionOrders), id, "status")
	return r.repo.one(r.repo.client.do(ctx, http.MethodPut, u, nil, map[string]string{"status": string(status)}))
}

// NewRemoteSet builds the repository set over a remote admin API
func NewRemoteSet(c *Remote) *Set {
	orders := &RemoteRepository[domain.Order, string]{client: c, e: orderEntity}
	regs := &RemoteRepository[domain.Registration, int64]{client: c, e: registrationEntity}
	return &Set{
		Backend:       BackendRemote,
		Products:      &RemoteRepository[domain.Product, int64]{client: c, e: productEntity},
		Orders:        orders,
		BlogPosts:     &RemoteRepository[domain.BlogPost, int64]{client: c, e: blogPostEntity},
		Agents:        &RemoteRepository[domain.Agent, int64]{client: c, e: agentEntity},
		Registrations: regs,
		Reviewer:      remoteReviewer{regs},
		OrderStatus:   remoteOrderStatus{orders},
	}
}
