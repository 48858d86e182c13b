package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/pms_backend/internal/service/validation"
	"github.com/Alijeyrad/pms_backend/pkg/authorize"
	"github.com/Alijeyrad/pms_backend/pkg/reqctx"
	"github.com/Alijeyrad/pms_backend/pkg/s3"
)

// dateLayout is the calendar date format accepted in request bodies.
const dateLayout = "2006-01-02"

var errBadDate = errors.New("date has wrong format. Use YYYY-MM-DD")

// Envelope is the body of every response. Status mirrors the HTTP code.
type Envelope struct {
	Status  int                 `json:"status"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Message string              `json:"message,omitempty"`
}

func respond(c fiber.Ctx, status int, data any, msg string) error {
	return c.Status(status).JSON(Envelope{Status: status, Data: data, Message: msg})
}

func ok(c fiber.Ctx, data any, msg string) error {
	return respond(c, fiber.StatusOK, data, msg)
}

func created(c fiber.Ctx, data any, msg string) error {
	return respond(c, fiber.StatusCreated, data, msg)
}

func message(c fiber.Ctx, status int, msg string) error {
	return respond(c, status, nil, msg)
}

func badRequest(c fiber.Ctx, msg string) error {
	return message(c, fiber.StatusBadRequest, msg)
}

func notFound(c fiber.Ctx, err error) error {
	return message(c, fiber.StatusNotFound, sentence(err))
}

func conflict(c fiber.Ctx, err error) error {
	return message(c, fiber.StatusConflict, sentence(err))
}

func forbidden(c fiber.Ctx) error {
	return message(c, fiber.StatusForbidden, middleware.MsgAccessDenied)
}

func invalid(c fiber.Ctx, verr *validation.Error) error {
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{
		Status:  fiber.StatusBadRequest,
		Errors:  verr.Map(),
		Message: "Invalid input.",
	})
}

// fail renders the errors every map<X>Error function shares: field errors,
// policy refusals, and a bad request carrying the error text for the rest.
func fail(c fiber.Ctx, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return invalid(c, verr)
	case errors.Is(err, authorize.ErrForbidden):
		return forbidden(c)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return message(c, fe.Code, fe.Message)
	}
	slog.ErrorContext(c.Context(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return badRequest(c, sentence(err))
}

// sentence turns an error into a client message: capitalised, with a full
// stop.
func sentence(err error) string {
	s := strings.TrimSpace(err.Error())
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "?") && !strings.HasSuffix(s, "!") {
		s += "."
	}
	return s
}

// ErrorHandler renders errors that escape handlers and middleware (auth
// failures, unknown routes, recovered panics) in the response envelope.
func ErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error."

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	} else {
		slog.ErrorContext(c.Context(), "unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return message(c, code, msg)
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

func identity(c fiber.Ctx) (reqctx.Identity, error) {
	id, ok := middleware.IdentityFromFiber(c)
	if !ok {
		return reqctx.Identity{}, fiber.NewError(fiber.StatusUnauthorized, middleware.MsgNotAuthenticated)
	}
	return id, nil
}

// pathID parses a uuid route parameter. Malformed ids match nothing.
func pathID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusNotFound, "Not found.")
	}
	return id, nil
}

// parseDate reads an optional date field, recording a field error in verr
// when it is malformed.
func parseDate(raw *string, field string, verr *validation.Error) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		verr.Add(field, errBadDate)
		return nil
	}
	return &t
}

// isInvalid reports whether err carries field errors. Sentinels wrapped
// inside them must not be mistaken for lookups that failed.
func isInvalid(err error) bool {
	var verr *validation.Error
	return errors.As(err, &verr)
}

func bindJSON(c fiber.Ctx, out any) error {
	if err := c.Bind().JSON(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
	}
	return nil
}

// formFile opens an optional multipart file. It returns nil when the field
// is absent; the caller closes the returned file.
func formFile(c fiber.Ctx, field string) (*s3.File, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file.")
	}
	return &s3.File{ContentType: fh.Header.Get(fiber.HeaderContentType), Size: fh.Size, Body: f}, f, nil
}

func closeAll(files ...multipart.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}
