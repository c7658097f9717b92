package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dtroode/storefront/internal/model"
	"github.com/dtroode/storefront/internal/token"
)

const (
	gatewaySecret   = "gateway-secret"
	gatewayPageSize = 10
)

// Request is a call received by the Gateway.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
}

type gatewayUser struct {
	user     model.User
	password string
	clientID int64
}

type userKey struct{}

// Gateway is an in-memory storefront backend served over httptest.
type Gateway struct {
	mu sync.Mutex

	jwt    *token.JWT
	server *httptest.Server

	nextID   int64
	users    map[string]*gatewayUser
	clients  map[int64]*model.Client
	products map[int64]*model.Product
	orders   map[int64]*model.Order
	details  map[int64][]model.OrderDetail
	requests []Request

	currentUserStatus int
	rejectRefresh     bool
	rotateRefresh     bool
	failDetails       map[int64]bool
	failProducts      map[int64]bool
}

// NewGateway starts a gateway that is closed when the test ends.
func NewGateway(t testing.TB) *Gateway {
	t.Helper()

	g := &Gateway{
		jwt:          token.NewJWT(gatewaySecret),
		nextID:       1,
		users:        make(map[string]*gatewayUser),
		clients:      make(map[int64]*model.Client),
		products:     make(map[int64]*model.Product),
		orders:       make(map[int64]*model.Order),
		details:      make(map[int64][]model.OrderDetail),
		failDetails:  make(map[int64]bool),
		failProducts: make(map[int64]bool),
	}
	g.server = httptest.NewServer(g.routes())
	t.Cleanup(g.server.Close)

	return g
}

// URL returns the API base URL.
func (g *Gateway) URL() string {
	return g.server.URL + "/api/"
}

// Secret returns the key the gateway signs tokens with.
func (g *Gateway) Secret() string {
	return gatewaySecret
}

func (g *Gateway) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(g.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/token/", g.obtainToken)
		r.Post("/token/refresh/", g.refreshToken)
		r.Post("/register/", g.register)
		r.Post("/link-user-client/", g.linkUserClient)
		r.Get("/productos/", g.listProducts)
		r.Get("/productos/{id}/", g.getProduct)

		r.Group(func(r chi.Router) {
			r.Use(g.authenticate)

			r.Get("/current-user/", g.currentUser)
			r.Post("/productos/", g.saveProduct)
			r.Put("/productos/{id}/", g.saveProduct)
			r.Delete("/productos/{id}/", g.deleteProduct)
			r.Get("/productos/{id}/pedidos/", g.productOrders)
			r.Get("/clientes/", g.listClients)
			r.Post("/clientes/", g.saveClient)
			r.Get("/clientes/{id}/", g.getClient)
			r.Put("/clientes/{id}/", g.saveClient)
			r.Delete("/clientes/{id}/", g.deleteClient)
			r.Get("/clientes/{id}/pedidos/", g.clientOrders)
			r.Get("/pedidos/", g.listOrders)
			r.Post("/pedidos/", g.createOrder)
			r.Get("/pedidos/{id}/", g.getOrder)
			r.Put("/pedidos/{id}/", g.updateOrder)
			r.Delete("/pedidos/{id}/", g.deleteOrder)
			r.Get("/pedidos/{id}/detalles/", g.orderDetails)
			r.Post("/pedidos/{id}/agregar_producto/", g.addOrderProduct)
			r.Get("/dashboard/", g.dashboard)
		})
	})

	return r
}

// AddProduct stores a product and returns it with its assigned id.
func (g *Gateway) AddProduct(p model.Product) model.Product {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p.ID == 0 {
		p.ID = g.id()
	}
	g.products[p.ID] = &p
	return p
}

// AddUser stores a user. A non-nil client is stored and linked to the user.
func (g *Gateway) AddUser(username, password string, client *model.Client) model.User {
	g.mu.Lock()
	defer g.mu.Unlock()

	u := &gatewayUser{user: model.User{ID: g.id(), Username: username, Email: username + "@example.com"}, password: password}
	if client != nil {
		cl := *client
		if cl.ID == 0 {
			cl.ID = g.id()
		}
		g.clients[cl.ID] = &cl
		u.clientID = cl.ID
	}
	g.users[username] = u
	return u.user
}

// IssueTokens mints a token pair for an existing user.
func (g *Gateway) IssueTokens(t testing.TB, username string) model.TokenPair {
	t.Helper()

	g.mu.Lock()
	u, ok := g.users[username]
	g.mu.Unlock()
	if !ok {
		t.Fatalf("gateway: unknown user %q", username)
	}

	pair, err := g.tokens(u)
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}
	return pair
}

// SetCurrentUserStatus forces current-user/ to answer with status. Zero restores normal behavior.
func (g *Gateway) SetCurrentUserStatus(status int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentUserStatus = status
}

// RejectRefresh makes token/refresh/ answer 401.
func (g *Gateway) RejectRefresh(reject bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rejectRefresh = reject
}

// RotateRefresh makes token/refresh/ return a new refresh token too.
func (g *Gateway) RotateRefresh(rotate bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotateRefresh = rotate
}

// FailOrderDetails makes the detail listing of an order answer 500.
func (g *Gateway) FailOrderDetails(orderID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failDetails[orderID] = true
}

// FailProduct makes the product endpoint answer 500 for id.
func (g *Gateway) FailProduct(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failProducts[id] = true
}

// Requests returns the calls received so far.
func (g *Gateway) Requests() []Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Request(nil), g.requests...)
}

// Orders returns the stored orders sorted by id.
func (g *Gateway) Orders() []model.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sortedOrders(func(*model.Order) bool { return true })
}

// OrderDetails returns the stored lines of an order.
func (g *Gateway) OrderDetails(orderID int64) []model.OrderDetail {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]model.OrderDetail(nil), g.details[orderID]...)
}

// Client returns a stored client.
func (g *Gateway) Client(id int64) (model.Client, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cl, ok := g.clients[id]
	if !ok {
		return model.Client{}, false
	}
	return *cl, true
}

func (g *Gateway) id() int64 {
	id := g.nextID
	g.nextID++
	return id
}

func (g *Gateway) tokens(u *gatewayUser) (model.TokenPair, error) {
	access, err := g.jwt.GenerateAccessToken(u.user.ID, u.user.Username)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, err := g.jwt.GenerateRefreshToken(u.user.ID)
	if err != nil {
		return model.TokenPair{}, err
	}
	return model.TokenPair{Access: access, Refresh: refresh}, nil
}

func (g *Gateway) userByID(id int64) *gatewayUser {
	for _, u := range g.users {
		if u.user.ID == id {
			return u
		}
	}
	return nil
}

func (g *Gateway) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.requests = append(g.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
		})
		g.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			respond(w, http.StatusUnauthorized, map[string]any{"detail": "Authentication credentials were not provided."})
			return
		}
		claims, err := g.jwt.ParseAccessToken(raw)
		if err != nil {
			respond(w, http.StatusUnauthorized, map[string]any{"detail": "Given token not valid for any token type"})
			return
		}

		g.mu.Lock()
		u := g.userByID(claims.UserID)
		g.mu.Unlock()
		if u == nil {
			respond(w, http.StatusUnauthorized, map[string]any{"detail": "User not found"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
	})
}

func currentUser(r *http.Request) *gatewayUser {
	u, _ := r.Context().Value(userKey{}).(*gatewayUser)
	return u
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func notFound(w http.ResponseWriter) {
	respond(w, http.StatusNotFound, map[string]any{"detail": "No encontrado."})
}

func (g *Gateway) obtainToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON body"})
		return
	}

	g.mu.Lock()
	u, ok := g.users[req.Username]
	g.mu.Unlock()
	if !ok || u.password != req.Password {
		respond(w, http.StatusUnauthorized, map[string]any{"detail": "No active account found with the given credentials"})
		return
	}

	pair, err := g.tokens(u)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
		return
	}
	respond(w, http.StatusOK, pair)
}

func (g *Gateway) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON body"})
		return
	}

	g.mu.Lock()
	reject, rotate := g.rejectRefresh, g.rotateRefresh
	g.mu.Unlock()

	userID, err := g.jwt.ParseRefreshToken(req.Refresh)
	if reject || err != nil {
		respond(w, http.StatusUnauthorized, map[string]any{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}

	g.mu.Lock()
	u := g.userByID(userID)
	g.mu.Unlock()
	if u == nil {
		respond(w, http.StatusUnauthorized, map[string]any{"detail": "User not found"})
		return
	}

	pair, err := g.tokens(u)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
		return
	}
	if !rotate {
		pair.Refresh = ""
	}
	respond(w, http.StatusOK, pair)
}

func (g *Gateway) currentUser(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.currentUserStatus != 0 {
		respond(w, g.currentUserStatus, map[string]any{"detail": http.StatusText(g.currentUserStatus)})
		return
	}

	identity := model.Identity{User: u.user}
	if cl, ok := g.clients[u.clientID]; ok {
		c := *cl
		identity.Client = &c
	}
	respond(w, http.StatusOK, identity)
}

func (g *Gateway) register(w http.ResponseWriter, r *http.Request) {
	var req model.Registration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON body"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.users[req.Username]; exists {
		respond(w, http.StatusBadRequest, map[string]any{"username": []string{"A user with that username already exists."}})
		return
	}
	if req.Password != req.Password2 {
		respond(w, http.StatusBadRequest, map[string]any{"password": []string{"Password fields didn't match."}})
		return
	}

	cl := &model.Client{ID: g.id(), Name: strings.TrimSpace(req.FirstName + " " + req.LastName), Email: req.Email, Address: req.Address}
	g.clients[cl.ID] = cl
	u := &gatewayUser{
		user:     model.User{ID: g.id(), Username: req.Username, Email: req.Email, FirstName: req.FirstName, LastName: req.LastName},
		password: req.Password,
		clientID: cl.ID,
	}
	g.users[req.Username] = u

	respond(w, http.StatusCreated, map[string]any{"user": u.user, "cliente": cl})
}

func (g *Gateway) linkUserClient(w http.ResponseWriter, r *http.Request) {
	var req model.LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON body"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.users[req.Username]; exists {
		respond(w, http.StatusBadRequest, map[string]any{"username": []string{"A user with that username already exists."}})
		return
	}

	var client *model.Client
	for _, cl := range g.clients {
		if strings.EqualFold(cl.Email, req.Email) {
			client = cl
			break
		}
	}
	if client == nil {
		respond(w, http.StatusBadRequest, map[string]any{"error": "No existe un cliente con ese email"})
		return
	}

	u := &gatewayUser{
		user:     model.User{ID: g.id(), Username: req.Username, Email: req.Email},
		password: req.Password,
		clientID: client.ID,
	}
	g.users[req.Username] = u

	respond(w, http.StatusCreated, map[string]any{"user": u.user, "cliente": client})
}

func (g *Gateway) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	g.mu.Lock()
	items := make([]model.Product, 0, len(g.products))
	for _, p := range g.products {
		items = append(items, *p)
	}
	g.mu.Unlock()

	filtered := items[:0]
	for _, p := range items {
		if s := q.Get("search"); s != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), strings.ToLower(s)) {
			continue
		}
		if q.Get("stock__gt") != "" && p.Stock <= 0 {
			continue
		}
		if v, err := decimal.NewFromString(q.Get("min_price")); err == nil && p.Price.LessThan(v) {
			continue
		}
		if v, err := decimal.NewFromString(q.Get("max_price")); err == nil && p.Price.GreaterThan(v) {
			continue
		}
		filtered = append(filtered, p)
	}

	sortProducts(filtered, model.ProductOrdering(q.Get("ordering")))
	respond(w, http.StatusOK, paginate(r, filtered))
}

func sortProducts(items []model.Product, ordering model.ProductOrdering) {
	less := func(a, b model.Product) bool { return a.ID < b.ID }
	switch ordering {
	case model.OrderByName:
		less = func(a, b model.Product) bool { return a.Name < b.Name }
	case model.OrderByPriceAsc:
		less = func(a, b model.Product) bool { return a.Price.LessThan(b.Price) }
	case model.OrderByPriceDesc:
		less = func(a, b model.Product) bool { return a.Price.GreaterThan(b.Price) }
	case model.OrderByAvailability:
		less = func(a, b model.Product) bool { return a.Stock > b.Stock }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func paginate[T any](r *http.Request, items []T) model.Page[T] {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	start := min((page-1)*gatewayPageSize, len(items))
	end := min(start+gatewayPageSize, len(items))

	out := model.Page[T]{Count: len(items), Results: append([]T{}, items[start:end]...)}
	link := func(p int) string {
		u := *r.URL
		q := u.Query()
		q.Set("page", strconv.Itoa(p))
		u.RawQuery = q.Encode()
		return "http://" + r.Host + u.String()
	}
	if end < len(items) {
		out.Next = link(page + 1)
	}
	if page > 1 {
		out.Previous = link(page - 1)
	}
	return out
}

func (g *Gateway) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failProducts[id] {
		respond(w, http.StatusInternalServerError, map[string]any{"detail": "product lookup failed"})
		return
	}
	p, ok := g.products[id]
	if !ok {
		notFound(w)
		return
	}
	respond(w, http.StatusOK, p)
}

func (g *Gateway) saveProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"detail": "expected multipart form"})
		return
	}

	price, err := decimal.NewFromString(r.FormValue("precio"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"precio": []string{"A valid number is required."}})
		return
	}
	stock, err := strconv.Atoi(r.FormValue("stock"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"stock": []string{"A valid integer is required."}})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p := &model.Product{}
	status := http.StatusCreated
	if r.Method == http.MethodPut {
		id, ok := pathID(r)
		existing, found := g.products[id]
		if !ok || !found {
			notFound(w)
			return
		}
		p = existing
		status = http.StatusOK
	} else {
		p.ID = g.id()
		g.products[p.ID] = p
	}

	p.Name = r.FormValue("nombre")
	p.Description = r.FormValue("descripcion")
	p.Price = price
	p.Stock = stock
	if _, header, err := r.FormFile("imagen"); err == nil {
		p.Image = "/media/productos/" + header.Filename
	}

	respond(w, status, p)
}

func (g *Gateway) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.products[id]; !ok {
		notFound(w)
		return
	}
	delete(g.products, id)
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) productOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	g.mu.Lock()
	defer g.mu.Unlock()

	orders := g.sortedOrders(func(o *model.Order) bool {
		for _, d := range g.details[o.ID] {
			if d.Product.ID == id {
				return true
			}
		}
		return false
	})
	respond(w, http.StatusOK, orders)
}

func (g *Gateway) listClients(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	items := make([]model.Client, 0, len(g.clients))
	for _, cl := range g.clients {
		items = append(items, *cl)
	}
	g.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	respond(w, http.StatusOK, paginate(r, items))
}

func (g *Gateway) getClient(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	g.mu.Lock()
	defer g.mu.Unlock()

	cl, ok := g.clients[id]
	if !ok {
		notFound(w)
		return
	}
	respond(w, http.StatusOK, cl)
}

func (g *Gateway) saveClient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"detail": "expected multipart form"})
		return
	}
	if r.FormValue("email") == "" {
		respond(w, http.StatusBadRequest, map[string]any{"email": []string{"This field may not be blank."}})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cl := &model.Client{}
	status := http.StatusCreated
	if r.Method == http.MethodPut {
		id, ok := pathID(r)
		existing, found := g.clients[id]
		if !ok || !found {
			notFound(w)
			return
		}
		cl = existing
		status = http.StatusOK
	} else {
		cl.ID = g.id()
		g.clients[cl.ID] = cl
	}

	cl.Name = r.FormValue("nombre")
	cl.Email = r.FormValue("email")
	cl.Address = r.FormValue("direccion")
	if _, header, err := r.FormFile("foto"); err == nil {
		cl.Photo = "/media/clientes/" + header.Filename
	}

	respond(w, status, cl)
}

func (g *Gateway) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.clients[id]; !ok {
		notFound(w)
		return
	}
	delete(g.clients, id)
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) clientOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	g.mu.Lock()
	defer g.mu.Unlock()

	respond(w, http.StatusOK, g.sortedOrders(func(o *model.Order) bool { return o.ClientID == id }))
}

func (g *Gateway) sortedOrders(keep func(*model.Order) bool) []model.Order {
	out := make([]model.Order, 0, len(g.orders))
	for _, o := range g.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *Gateway) listOrders(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	g.mu.Lock()
	orders := g.sortedOrders(func(o *model.Order) bool { return o.ClientID == u.clientID })
	g.mu.Unlock()

	respond(w, http.StatusOK, paginate(r, orders))
}

func (g *Gateway) createOrder(w http.ResponseWriter, r *http.Request) {
	var req model.NewOrder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON body"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.clients[req.ClientID]; !ok {
		respond(w, http.StatusBadRequest, map[string]any{"cliente": []string{"Invalid pk \"" + strconv.FormatInt(req.ClientID, 10) + "\" - object does not exist."}})
		return
	}
	if len(req.Details) == 0 {
		respond(w, http.StatusBadRequest, map[string]any{"detalles": []string{"This list may not be empty."}})
		return
	}
	for _, line := range req.Details {
		p, ok := g.products[line.ProductID]
		if !ok {
			respond(w, http.StatusBadRequest, map[string]any{"detalles": []string{"Producto inexistente"}})
			return
		}
		if line.Quantity > p.Stock {
			respond(w, http.StatusBadRequest, map[string]any{"error": "Stock insuficiente para " + p.Name})
			return
		}
	}

	status := req.Status
	if status == "" {
		status = model.OrderPending
	}
	o := &model.Order{ID: g.id(), ClientID: req.ClientID, Date: time.Now().UTC().Truncate(time.Second), Status: status}
	g.orders[o.ID] = o
	for _, line := range req.Details {
		g.appendDetail(o, line)
	}

	respond(w, http.StatusCreated, o)
}

func (g *Gateway) appendDetail(o *model.Order, line model.OrderLine) model.OrderDetail {
	p := g.products[line.ProductID]
	p.Stock -= line.Quantity

	d := model.OrderDetail{
		ID:        g.id(),
		OrderID:   o.ID,
		Product:   model.ProductRef{ID: p.ID},
		Quantity:  line.Quantity,
		UnitPrice: p.Price,
		Subtotal:  p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
	}
	g.details[o.ID] = append(g.details[o.ID], d)
	o.Total = o.Total.Add(d.Subtotal)
	return d
}

func (g *Gateway) ownOrder(w http.ResponseWriter, r *http.Request) *model.Order {
	id, _ := pathID(r)
	u := currentUser(r)

	o, ok := g.orders[id]
	if !ok || o.ClientID != u.clientID {
		notFound(w)
		return nil
	}
	return o
}

func (g *Gateway) getOrder(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if o := g.ownOrder(w, r); o != nil {
		respond(w, http.StatusOK, o)
	}
}

func (g *Gateway) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req model.NewOrder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON body"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	o := g.ownOrder(w, r)
	if o == nil {
		return
	}
	if req.Status != "" {
		o.Status = req.Status
	}
	respond(w, http.StatusOK, o)
}

func (g *Gateway) deleteOrder(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	o := g.ownOrder(w, r)
	if o == nil {
		return
	}
	delete(g.orders, o.ID)
	delete(g.details, o.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) orderDetails(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	o := g.ownOrder(w, r)
	if o == nil {
		return
	}
	if g.failDetails[o.ID] {
		respond(w, http.StatusInternalServerError, map[string]any{"detail": "detail lookup failed"})
		return
	}
	respond(w, http.StatusOK, append([]model.OrderDetail{}, g.details[o.ID]...))
}

func (g *Gateway) addOrderProduct(w http.ResponseWriter, r *http.Request) {
	var line model.OrderLine
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON body"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	o := g.ownOrder(w, r)
	if o == nil {
		return
	}
	p, ok := g.products[line.ProductID]
	if !ok {
		respond(w, http.StatusBadRequest, map[string]any{"producto": []string{"Producto inexistente"}})
		return
	}
	if line.Quantity < 1 || line.Quantity > p.Stock {
		respond(w, http.StatusBadRequest, map[string]any{"error": "Stock insuficiente para " + p.Name})
		return
	}

	respond(w, http.StatusCreated, g.appendDetail(o, line))
}

func (g *Gateway) dashboard(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	respond(w, http.StatusOK, map[string]any{
		"total_productos": len(g.products),
		"total_clientes":  len(g.clients),
		"total_pedidos":   len(g.orders),
	})
}
