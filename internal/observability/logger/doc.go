// Package logger wraps a process-wide zap logger with request scoping.
//
// Init is called once from main:
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "essgate"})
//	defer logger.Sync()
//
// Handlers and services take the request-scoped logger from the context:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login"))
//	log.Info("device bound", logger.EmployeeID(emp.ID))
package logger
