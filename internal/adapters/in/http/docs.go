package http

import (
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

// openAPIDoc serves the embedded document through the swag registry.
type openAPIDoc struct {
	doc *openapi3.T
}

func (d openAPIDoc) ReadDoc() string {
	raw, err := d.doc.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// swag.Register panics on a second registration under the same name, and
// tests build many routers in one process.
var registerDocOnce sync.Once

// registerDocs mounts the Swagger UI at /swagger/index.html and the raw
// document at /swagger/doc.json.
func registerDocs(e *echo.Echo, swagger *openapi3.T) {
	registerDocOnce.Do(func() {
		swag.Register(swag.Name, openAPIDoc{doc: swagger})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
