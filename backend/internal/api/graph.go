package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"digital-garden/backend/internal/knowledge"
	"digital-garden/backend/internal/portfolio"
	"digital-garden/backend/internal/render"
	"digital-garden/backend/internal/scene"
	apperrors "digital-garden/backend/pkg/errors"
)

// graphResponse is the JSON shape of /api/graph
type graphResponse struct {
	Mode  knowledge.GroupingMode   `json:"mode"`
	Modes []knowledge.GroupingMode `json:"modes"`
	Data  knowledge.Data           `json:"data"`
	Stats knowledge.Stats          `json:"stats"`
}

// buildGraph reads the mode, research and q parameters and builds the graph
// from the current project source
func (s *Server) buildGraph(c *gin.Context) (knowledge.GroupingMode, knowledge.Data, error) {
	mode, err := knowledge.ParseGroupingMode(c.Query("mode"))
	if err != nil {
		return "", knowledge.Data{}, err
	}
	projects, source, err := s.loadProjects(c.Request.Context())
	if err != nil {
		return "", knowledge.Data{}, err
	}
	c.Header(dataSourceHeader, source)

	research, _ := strconv.ParseBool(c.Query("research"))
	data := knowledge.Build(portfolio.FilterProjects(projects, c.Query("q")), knowledge.Options{
		Grouping:     mode,
		ResearchOnly: research,
		Now:          s.now,
	})
	return mode, data, nil
}

func (s *Server) graphData(c *gin.Context) {
	mode, data, err := s.buildGraph(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, graphResponse{
		Mode:  mode,
		Modes: knowledge.GroupingModes,
		Data:  data,
		Stats: knowledge.Summarize(data),
	})
}

// graphSVG renders the static fallback, optionally focused on one node
func (s *Server) graphSVG(c *gin.Context) {
	_, data, err := s.buildGraph(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	sc := scene.New(data, scene.Options{SkipLayout: true})
	if id := c.Query("highlight"); id != "" && !sc.Focus(id) {
		s.respondError(c, apperrors.NewGraphNodeNotFound(id))
		return
	}
	svg, err := render.SVG(sc, render.DefaultSVGOptions())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", []byte(svg))
}

// nodeMenu returns the context menu a right click on the node would open
func (s *Server) nodeMenu(c *gin.Context) {
	_, data, err := s.buildGraph(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	x, _ := strconv.ParseFloat(c.Query("x"), 64)
	y, _ := strconv.ParseFloat(c.Query("y"), 64)

	id := c.Param("id")
	sc := scene.New(data, scene.Options{SkipLayout: true})
	menu := sc.ContextMenu(id, x, y)
	if menu == nil {
		s.respondError(c, apperrors.NewGraphNodeNotFound(id))
		return
	}
	c.JSON(http.StatusOK, menu)
}

// graphPage serves the interactive 3D view
func (s *Server) graphPage(c *gin.Context) {
	mode, data, err := s.buildGraph(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	width, _ := strconv.Atoi(c.Query("width"))

	title := "Knowledge Graph"
	if cfg, err := s.store.Config(); err == nil && cfg.Name != "" {
		title = cfg.Name + " · Knowledge Graph"
	}
	page, err := render.HTML(data, render.HTMLOptions{Title: title, Mode: mode, WindowWidth: width})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
