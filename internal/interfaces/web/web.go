package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/janhq/surprise-api/internal/domain/surprise"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// MinMessageLength is enforced by the compose form before upload.
const MinMessageLength = 10

type pageData struct {
	Title            string
	Page             string
	Slug             string
	MaxUploadMB      int64
	MinMessageLength int
}

// Client serves the browser pages for composing and viewing surprises.
type Client struct {
	maxUploadBytes int64
}

func NewClient(maxUploadBytes int64) *Client {
	return &Client{maxUploadBytes: maxUploadBytes}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse web templates: %w", err)
	}
	return tmpl, nil
}

// Register mounts the pages and static assets on the engine.
func (cl *Client) Register(engine *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("open static assets: %w", err)
	}

	engine.SetHTMLTemplate(tmpl)
	engine.StaticFS("/static", http.FS(static))
	engine.GET("/", cl.page("index", "Create a Surprise"))
	engine.GET("/success", cl.page("success", "Surprise Created"))
	engine.GET("/surprise/:slug", cl.viewer)
	return nil
}

func (cl *Client) data(page, title string) pageData {
	return pageData{
		Title:            title,
		Page:             page,
		MaxUploadMB:      cl.maxUploadBytes / (1024 * 1024),
		MinMessageLength: MinMessageLength,
	}
}

func (cl *Client) page(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name+".html", cl.data(name, title))
	}
}

func (cl *Client) viewer(c *gin.Context) {
	slug := c.Param("slug")
	if !domain.ValidateSlug(slug) {
		data := cl.data("surprise", "Surprise Not Found")
		c.HTML(http.StatusNotFound, "surprise.html", data)
		return
	}
	data := cl.data("surprise", "Surprise!")
	data.Slug = slug
	c.HTML(http.StatusOK, "surprise.html", data)
}
