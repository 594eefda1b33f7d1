// Package api exposes the extraction service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/maverock24/webToText/internal/controller"
	"github.com/maverock24/webToText/internal/devtools"
)

// Service is the controller surface the API needs.
type Service interface {
	Status(ctx context.Context) (controller.Status, error)
	Connect(ctx context.Context) (controller.Status, error)
	ListTabs(ctx context.Context) ([]devtools.Tab, error)
	CreateTab(ctx context.Context) (devtools.Tab, error)
	ExtractURL(ctx context.Context, url string, save bool) (controller.URLExtraction, error)
	ExtractAllTabs(ctx context.Context, save bool) (controller.BatchExtraction, error)
}

// NewServer builds the HTTP handler for the daemon.
func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("WebToText API", "1.0.0")
	api := humachi.New(router, cfg)

	registerHandlers(api, svc)
	return router
}

func registerHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type statusOutput struct {
		Body controller.Status
	}
	huma.Register(api, huma.Operation{OperationID: "status", Method: http.MethodGet, Path: "/api/v1/status", Summary: "Session status", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct{}) (*statusOutput, error) {
			st, err := svc.Status(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body = st
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "connect", Method: http.MethodPost, Path: "/api/v1/connect", Summary: "Bind the session to a debuggable tab", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct{}) (*statusOutput, error) {
			st, err := svc.Connect(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body = st
			return out, nil
		})

	type tabsOutput struct {
		Body struct {
			Tabs []devtools.Tab `json:"tabs"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-tabs", Method: http.MethodGet, Path: "/api/v1/tabs", Summary: "List debuggable page tabs", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*tabsOutput, error) {
			tabs, err := svc.ListTabs(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &tabsOutput{}
			out.Body.Tabs = tabs
			return out, nil
		})

	type tabOutput struct {
		Body devtools.Tab
	}
	huma.Register(api, huma.Operation{OperationID: "create-tab", Method: http.MethodPost, Path: "/api/v1/tabs", Summary: "Open a new tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*tabOutput, error) {
			tab, err := svc.CreateTab(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &tabOutput{}
			out.Body = tab
			return out, nil
		})

	type extractURLInput struct {
		Body struct {
			URL  string `json:"url" doc:"Page address to navigate to and extract"`
			Save bool   `json:"save,omitempty" doc:"Write the result to the output directory"`
		}
	}
	type extractURLOutput struct {
		Body controller.URLExtraction
	}
	huma.Register(api, huma.Operation{OperationID: "extract-url", Method: http.MethodPost, Path: "/api/v1/extract", Summary: "Extract text from one URL", Tags: []string{"Extract"}},
		func(ctx context.Context, input *extractURLInput) (*extractURLOutput, error) {
			if input.Body.URL == "" {
				return nil, huma.Error400BadRequest("url is required")
			}
			res, err := svc.ExtractURL(ctx, input.Body.URL, input.Body.Save)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &extractURLOutput{}
			out.Body = res
			return out, nil
		})

	type extractAllInput struct {
		Body struct {
			Save bool `json:"save,omitempty" doc:"Write the aggregate file to the output directory"`
		}
	}
	type extractAllOutput struct {
		Body controller.BatchExtraction
	}
	huma.Register(api, huma.Operation{OperationID: "extract-all-tabs", Method: http.MethodPost, Path: "/api/v1/extract/all", Summary: "Extract text from every open tab", Tags: []string{"Extract"}},
		func(ctx context.Context, input *extractAllInput) (*extractAllOutput, error) {
			res, err := svc.ExtractAllTabs(ctx, input.Body.Save)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &extractAllOutput{}
			out.Body = res
			return out, nil
		})
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *devtools.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case devtools.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case devtools.CodeNotBound:
			return huma.Error409Conflict(coded.Message)
		case devtools.CodeNavigationTimeout:
			return huma.Error504GatewayTimeout(coded.Message)
		case devtools.CodeConnection, devtools.CodeProtocol:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
