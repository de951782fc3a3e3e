package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/pushparajlokesh/ml-cts-pro/internal/entity"
	"github.com/pushparajlokesh/ml-cts-pro/internal/service"
	"github.com/pushparajlokesh/ml-cts-pro/internal/session"
)

const (
	sessionCookie = "session"
	sessionCtxKey = "app-session"
)

// SessionManager is the slice of the session store the handlers need.
type SessionManager interface {
	Create(ctx context.Context, user *entity.User) (string, error)
	Resolve(ctx context.Context, claims *session.Claims) (*session.Session, error)
	ResultFile(ctx context.Context, sid string) (string, error)
	Destroy(ctx context.Context, sid string) error
	Secret() []byte
}

type Handler struct {
	auth      service.AuthService
	predict   service.PredictService
	sessions  SessionManager
	uploadDir string
}

func NewHandler(auth service.AuthService, predict service.PredictService, sessions SessionManager, uploadDir string) *Handler {
	return &Handler{auth: auth, predict: predict, sessions: sessions, uploadDir: uploadDir}
}

// Register wires all routes. Session-required routes sit behind the cookie
// JWT middleware plus a Redis liveness check.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/signup", h.SignupPage)
	e.POST("/signup", h.Signup)
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "ml-cts-pro",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	g := e.Group("")
	g.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  h.sessions.Secret(),
		TokenLookup: "cookie:" + sessionCookie,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(session.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.Redirect(http.StatusFound, "/login")
		},
	}))
	g.Use(h.requireSession)

	g.GET("/dashboard", h.Dashboard)
	g.GET("/predict", h.PredictPage)
	g.POST("/predict", h.Predict)
	g.GET("/download", h.Download)
	g.GET("/logout", h.Logout)
}

// requireSession resolves the validated cookie claims against the session
// store, so logged-out tokens stop working before their expiry.
func (h *Handler) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return c.Redirect(http.StatusFound, "/login")
		}
		claims, ok := token.Claims.(*session.Claims)
		if !ok {
			return c.Redirect(http.StatusFound, "/login")
		}
		sess, err := h.sessions.Resolve(c.Request().Context(), claims)
		if err != nil {
			return c.Redirect(http.StatusFound, "/login")
		}
		c.Set(sessionCtxKey, sess)
		return next(c)
	}
}

func currentSession(c echo.Context) *session.Session {
	sess, _ := c.Get(sessionCtxKey).(*session.Session)
	return sess
}

func (h *Handler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", nil)
}

type formPage struct {
	Message string
}

func (h *Handler) SignupPage(c echo.Context) error {
	return c.Render(http.StatusOK, "signup.html", formPage{})
}

func (h *Handler) Signup(c echo.Context) error {
	username := c.FormValue("username")
	email := c.FormValue("email")
	password := c.FormValue("password")
	if username == "" || email == "" || password == "" {
		return c.Render(http.StatusBadRequest, "signup.html", formPage{Message: "❌ All fields are required."})
	}

	if _, err := h.auth.SignUp(c.Request().Context(), username, email, password); err != nil {
		return c.Render(http.StatusOK, "signup.html", formPage{Message: "❌ Signup failed: " + err.Error()})
	}
	return c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", formPage{})
}

func (h *Handler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.auth.Login(ctx, c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Render(http.StatusUnauthorized, "login.html", formPage{Message: "❌ Invalid credentials"})
		}
		return c.Render(http.StatusOK, "login.html", formPage{Message: "❌ Login failed: " + err.Error()})
	}

	token, err := h.sessions.Create(ctx, user)
	if err != nil {
		return c.Render(http.StatusOK, "login.html", formPage{Message: "❌ Login failed: " + err.Error()})
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(session.TTL),
		HttpOnly: true,
	})
	return c.Redirect(http.StatusFound, "/dashboard")
}

type dashboardPage struct {
	Username string
	Model    *service.ModelSummary
}

func (h *Handler) Dashboard(c echo.Context) error {
	sess := currentSession(c)
	return c.Render(http.StatusOK, "dashboard.html", dashboardPage{
		Username: sess.Username,
		Model:    h.predict.Summary(),
	})
}

type predictPage struct {
	Message string
	Result  *service.PredictResult
}

func (h *Handler) PredictPage(c echo.Context) error {
	return c.Render(http.StatusOK, "predict.html", predictPage{})
}

func (h *Handler) Predict(c echo.Context) error {
	sess := currentSession(c)

	upload, err := c.FormFile("file")
	if err != nil {
		upload = nil // no file part in the request
	}

	result, err := h.predict.Predict(c.Request().Context(), sess, upload)
	if err != nil {
		return c.Render(http.StatusOK, "predict.html", predictPage{Message: predictionMessage(err)})
	}
	return c.Render(http.StatusOK, "predict.html", predictPage{Result: result})
}

func (h *Handler) Download(c echo.Context) error {
	sess := currentSession(c)

	name, err := h.sessions.ResultFile(c.Request().Context(), sess.SID)
	if err != nil {
		if errors.Is(err, session.ErrNoResult) {
			return c.String(http.StatusBadRequest, "❌ No predictions available. Please upload a file on the Prediction page.")
		}
		return c.String(http.StatusInternalServerError, "❌ Error: "+err.Error())
	}

	path := filepath.Join(h.uploadDir, name)
	if _, err := os.Stat(path); err != nil {
		return c.String(http.StatusNotFound, "❌ Prediction file not found. Please run prediction again.")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	return c.Attachment(path, name)
}

func (h *Handler) Logout(c echo.Context) error {
	sess := currentSession(c)
	if err := h.sessions.Destroy(c.Request().Context(), sess.SID); err != nil {
		return c.String(http.StatusInternalServerError, "❌ Error: "+err.Error())
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.Redirect(http.StatusFound, "/")
}

// predictionMessage maps each pipeline failure to its rendered message.
func predictionMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNoFile):
		return "❌ No file uploaded."
	case errors.Is(err, service.ErrEmptyFilename):
		return "❌ No file selected."
	case errors.Is(err, service.ErrUnsupportedExtension):
		return "❌ Only .csv files are supported."
	case errors.Is(err, service.ErrModelUnavailable):
		return "❌ Model not loaded on server."
	}

	var missing *service.MissingColumnsError
	if errors.As(err, &missing) {
		return "❌ The uploaded file is missing required feature columns: " + missing.List()
	}
	var count *service.FeatureCountError
	if errors.As(err, &count) {
		return fmt.Sprintf("❌ Model expects %d features, but your file has %d.", count.Expected, count.Actual)
	}
	var parse *service.ParseError
	if errors.As(err, &parse) {
		return "❌ Could not read CSV: " + parse.Err.Error()
	}
	return "❌ Error: " + err.Error()
}
