// Package mockapi is a reference implementation of the registry REST API,
// used for local runs, demos and end-to-end tests.
package mockapi

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mrsinham/ncdintake/internal/apiclient"
	"github.com/mrsinham/ncdintake/internal/intake"
)

// Options configures a Server.
type Options struct {
	Store       Store
	JWTSecret   string
	TokenTTL    time.Duration
	RequireAuth bool
	Logger      zerolog.Logger
	// Registry receives the server metrics and backs /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry
}

type envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Status: apiclient.StatusOK, Data: data})
}

func fail(c echo.Context, code int, err error) error {
	return c.JSON(code, envelope{Status: "error", Error: err.Error()})
}

// Server serves the registry API.
type Server struct {
	echo    *echo.Echo
	store   Store
	tokens  *Tokens
	log     zerolog.Logger
	metrics *serverMetrics
}

// New builds the server and its routes.
func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	s := &Server{
		echo:    echo.New(),
		store:   opts.Store,
		tokens:  NewTokens(opts.JWTSecret, opts.TokenTTL),
		log:     opts.Logger.With().Str("component", "mockapi").Logger(),
		metrics: newServerMetrics(opts.Registry),
	}
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(requestLogger(s.log))
	e.Use(s.metrics.middleware())

	e.GET("/health", func(c echo.Context) error { return ok(c, map[string]string{"service": "ncdintake-mockapi"}) })
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	e.POST("/login", s.login)
	e.POST("/register", s.registerUser)

	var auth []echo.MiddlewareFunc
	if opts.RequireAuth {
		auth = append(auth, requireBearer(s.tokens))
	}
	e.POST("/registerPatient", s.registerPatient, auth...)
	e.GET("/patients", s.listPatients, auth...)
	for _, reg := range intake.AllRegistries() {
		e.POST(reg.Endpoint("register", "Vitals"), s.registerVitals(reg), auth...)
		e.GET("/vitals/"+string(reg), s.listVitals(reg), auth...)
		e.POST(reg.Endpoint("register", "Consultation"), s.addConsultation(reg), auth...)
		e.POST(reg.Endpoint("edit", "Consultation"), s.editConsultation(reg), auth...)
		e.POST(reg.Endpoint("delete", "Consultation"), s.deleteConsultation(reg), auth...)
	}
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("starting server")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info().Msg("server stopped")
	return nil
}

func (s *Server) storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrDuplicatePhone), errors.Is(err, ErrDuplicateID),
		errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrDuplicateConsult):
		return fail(c, http.StatusConflict, unwrapAPI(err))
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownPatient):
		return fail(c, http.StatusNotFound, unwrapAPI(err))
	}
	s.log.Error().Err(err).Str("path", c.Path()).Msg("store failure")
	return fail(c, http.StatusInternalServerError, errors.New("internal error"))
}

// unwrapAPI returns the contract error inside err so that wrapping context
// does not leak into the response text.
func unwrapAPI(err error) error {
	for _, known := range []error{ErrDuplicatePhone, ErrDuplicateID, ErrDuplicateEmail, ErrDuplicateConsult, ErrNotFound, ErrUnknownPatient} {
		if errors.Is(err, known) {
			return known
		}
	}
	return err
}

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return errors.New("missing required fields: " + strings.Join(missing, ", "))
}

func (s *Server) registerPatient(c echo.Context) error {
	var p intake.PatientRegistration
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, errors.New("invalid request body"))
	}
	if err := required(map[string]string{"fname": p.FirstName, "lname": p.LastName, "phone_number": p.Phone, "id": p.NationalID}); err != nil {
		return fail(c, http.StatusBadRequest, err)
	}
	if err := s.store.CreatePatient(c.Request().Context(), p); err != nil {
		return s.storeError(c, err)
	}
	s.metrics.records.WithLabelValues("patient", strings.ToLower(p.Condition)).Inc()
	return ok(c, map[string]string{"id": p.NationalID})
}

func (s *Server) listPatients(c echo.Context) error {
	var reg intake.Registry
	if q := c.QueryParam("registry"); q != "" {
		r, err := intake.ParseRegistry(q)
		if err != nil {
			return fail(c, http.StatusBadRequest, err)
		}
		reg = r
	}
	patients, err := s.store.ListPatients(c.Request().Context(), reg)
	if err != nil {
		return s.storeError(c, err)
	}
	return ok(c, patients)
}

func (s *Server) requirePatient(c echo.Context, phone string) error {
	exists, err := s.store.PatientExists(c.Request().Context(), phone)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownPatient
	}
	return nil
}

func (s *Server) registerVitals(reg intake.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		var v intake.VitalsRecord
		if err := c.Bind(&v); err != nil {
			return fail(c, http.StatusBadRequest, errors.New("invalid request body"))
		}
		if err := required(map[string]string{"phone_number": v.Phone, "consultationId": v.ConsultationID}); err != nil {
			return fail(c, http.StatusBadRequest, err)
		}
		if err := s.requirePatient(c, v.Phone); err != nil {
			return s.storeError(c, err)
		}
		if err := s.store.AddVitals(c.Request().Context(), reg, v); err != nil {
			return s.storeError(c, err)
		}
		s.metrics.records.WithLabelValues("vitals", string(reg)).Inc()
		return ok(c, map[string]string{"consultationId": v.ConsultationID})
	}
}

func (s *Server) listVitals(reg intake.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		vitals, err := s.store.ListVitals(c.Request().Context(), reg, c.QueryParam("phone_number"))
		if err != nil {
			return s.storeError(c, err)
		}
		return ok(c, vitals)
	}
}

func (s *Server) bindConsultation(c echo.Context) (intake.ConsultationPayload, error) {
	var p intake.ConsultationPayload
	if err := c.Bind(&p); err != nil {
		return p, errors.New("invalid request body")
	}
	return p, required(map[string]string{"phone_number": p.Phone, "consultationId": p.ConsultationID})
}

func (s *Server) addConsultation(reg intake.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := s.bindConsultation(c)
		if err != nil {
			return fail(c, http.StatusBadRequest, err)
		}
		if err := s.requirePatient(c, p.Phone); err != nil {
			return s.storeError(c, err)
		}
		if err := s.store.AddConsultation(c.Request().Context(), reg, p); err != nil {
			return s.storeError(c, err)
		}
		s.metrics.records.WithLabelValues("consultation", string(reg)).Inc()
		return ok(c, map[string]string{"consultationId": p.ConsultationID})
	}
}

func (s *Server) editConsultation(reg intake.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := s.bindConsultation(c)
		if err != nil {
			return fail(c, http.StatusBadRequest, err)
		}
		if err := s.store.UpdateConsultation(c.Request().Context(), reg, p); err != nil {
			return s.storeError(c, err)
		}
		return ok(c, map[string]string{"consultationId": p.ConsultationID})
	}
}

func (s *Server) deleteConsultation(reg intake.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req intake.DeleteRequest
		if err := c.Bind(&req); err != nil {
			return fail(c, http.StatusBadRequest, errors.New("invalid request body"))
		}
		if err := required(map[string]string{"consultationId": req.ConsultationID}); err != nil {
			return fail(c, http.StatusBadRequest, err)
		}
		if err := s.store.DeleteConsultation(c.Request().Context(), reg, req.Phone, req.ConsultationID); err != nil {
			return s.storeError(c, err)
		}
		return ok(c, nil)
	}
}

func (s *Server) registerUser(c echo.Context) error {
	var req intake.UserRegistration
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, errors.New("invalid request body"))
	}
	if err := required(map[string]string{"email": req.Email, "phone_number": req.Phone, "password": req.Password, "role": req.Role}); err != nil {
		return fail(c, http.StatusBadRequest, err)
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return s.storeError(c, err)
	}
	u := User{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         req.Role,
		Speciality:   req.Speciality,
		Hospital:     req.Hospital,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(c.Request().Context(), u); err != nil {
		return s.storeError(c, err)
	}
	s.metrics.records.WithLabelValues("user", "").Inc()
	return ok(c, map[string]string{"userId": u.ID})
}

func (s *Server) login(c echo.Context) error {
	var req apiclient.LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, errors.New("invalid request body"))
	}
	u, err := s.store.UserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return s.storeError(c, err)
	}
	if u == nil || !CheckPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, ErrInvalidLogin)
	}
	tok, err := s.tokens.Issue(u)
	if err != nil {
		return s.storeError(c, err)
	}
	return ok(c, apiclient.LoginResult{Token: tok, Name: strings.TrimSpace(u.FirstName + " " + u.LastName), Role: u.Role})
}
