package http

import (
	"context"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// RouterOptions toggles the optional middleware.
type RouterOptions struct {
	// Sentry attaches a hub to every request; sentry.Init must have been called.
	Sentry bool
	// Swagger serves the API description under /swagger/.
	Swagger bool
}

// bodyValidator adapts go-playground/validator to echo.Validator.
type bodyValidator struct {
	validate *validator.Validate
}

func (v bodyValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// NewRouter builds the echo instance with middleware and every route registered.
func NewRouter(ctx context.Context, s *Server, opts RouterOptions) (*echo.Echo, error) {
	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	validateRequest, err := requestValidator(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(gommonlog.WARN)
	e.Validator = bodyValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
	e.HTTPErrorHandler = NewErrorHandler(s.logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(s.logger))
	if opts.Sentry {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	e.GET("/health", s.Health)
	e.POST("/webhooks/mercadopago", s.MercadoPagoWebhook)
	if opts.Swagger {
		if err := registerSwaggerDoc(doc); err != nil {
			return nil, err
		}
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := e.Group("/api/v1", validateRequest)

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:orderId", s.GetOrder)
	api.POST("/orders/:orderId/transitions", s.TransitionOrder)
	api.POST("/orders/:orderId/preauth", s.CreatePreauth)
	api.POST("/orders/:orderId/capture", s.CaptureOrder)
	api.GET("/orders/:orderId/chat", s.IsChatOpen)

	api.POST("/payments/:paymentId/events", s.SyncPaymentStatus)

	api.POST("/pros", s.RegisterPro)
	api.POST("/pros/:proProfileId/payouts", s.CreatePayout)
	api.POST("/payouts/:payoutId/send", s.SendPayout)
	api.POST("/payouts/:payoutId/events", s.SyncPayoutStatus)

	admin := api.Group("/admin")
	admin.POST("/orders/:orderId/force-status", s.ForceOrderStatus)
	admin.POST("/payments/:paymentId/refund", s.RefundPayment)
	admin.POST("/payouts/:payoutId/resend", s.ResendPayout)
	admin.POST("/pros/:proProfileId/:action", s.ModeratePro)
	admin.GET("/audit", s.GetAuditTrail)

	return e, nil
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("requestId", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}
