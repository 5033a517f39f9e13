package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"digital-garden/backend/internal/knowledge"
	"digital-garden/backend/internal/scene"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("graph").Parse(htmlTemplate))
}

// HTMLOptions configures the interactive page
type HTMLOptions struct {
	Title       string
	Mode        knowledge.GroupingMode
	WindowWidth int
}

// pageNode is a graph node enriched with its mesh and tooltip
type pageNode struct {
	knowledge.Node
	Mesh  scene.Mesh `json:"mesh"`
	Label string     `json:"label"`
}

type pageGraph struct {
	Nodes []pageNode       `json:"nodes"`
	Links []knowledge.Link `json:"links"`
}

type pageSettings struct {
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	Camera       scene.Camera `json:"camera"`
	WarmupTicks  int          `json:"warmupTicks"`
	ZoomDuration int          `json:"zoomDuration"`
	ZoomPadding  float64      `json:"zoomPadding"`
	LinkColor    string       `json:"linkColor"`
	LinkOpacity  float64      `json:"linkOpacity"`
	HoverScale   float64      `json:"hoverScale"`
	Cursor       string       `json:"cursor"`
}

type templateData struct {
	Title     string
	Mode      string
	Stats     knowledge.Stats
	GraphJSON template.JS
	Settings  template.JS
}

// HTML generates a self-contained page that renders the graph with the
// 3d-force-graph browser library. An empty graph yields a placeholder page.
func HTML(data knowledge.Data, opts HTMLOptions) (string, error) {
	if opts.Title == "" {
		opts.Title = "Knowledge Graph"
	}
	if opts.Mode == "" {
		opts.Mode = knowledge.GroupByTopic
	}
	if data.IsEmpty() {
		return generateEmptyHTML(opts.Title), nil
	}

	sc := scene.New(data, scene.Options{WindowWidth: opts.WindowWidth, SkipLayout: true})

	meshes := make(map[string]scene.Mesh)
	for _, m := range sc.Meshes() {
		meshes[m.NodeID] = m
	}
	graph := pageGraph{Nodes: make([]pageNode, 0, len(data.Nodes)), Links: data.Links}
	for _, n := range data.Nodes {
		graph.Nodes = append(graph.Nodes, pageNode{Node: n, Mesh: meshes[n.ID], Label: scene.Label(n)})
	}
	graphJSON, err := json.Marshal(graph)
	if err != nil {
		return "", fmt.Errorf("failed to encode graph: %w", err)
	}

	settingsJSON, err := json.Marshal(pageSettings{
		Width:        sc.Width,
		Height:       sc.Height,
		Camera:       scene.NewCamera(),
		WarmupTicks:  scene.DefaultLayoutOptions().WarmupTicks,
		ZoomDuration: scene.ZoomFitDuration,
		ZoomPadding:  scene.ZoomFitPadding,
		LinkColor:    linkColor,
		LinkOpacity:  linkOpacity,
		HoverScale:   scene.HoverScale,
		Cursor:       scene.CursorPointer,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode settings: %w", err)
	}

	td := templateData{
		Title:     opts.Title,
		Mode:      string(opts.Mode),
		Stats:     knowledge.Summarize(data),
		GraphJSON: template.JS(graphJSON),
		Settings:  template.JS(settingsJSON),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, td); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func generateEmptyHTML(title string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>` + template.HTMLEscapeString(title) + ` - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #0f172a;
      color: #cbd5e1;
    }
    .empty-state { text-align: center; }
    .empty-state h2 { margin-bottom: 0.5em; color: #f8fafc; }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No projects to display</h2>
    <p>Add projects to the garden or connect a GitHub account to grow the graph.</p>
  </div>
</body>
</html>`
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/three@0.160.0/build/three.min.js"></script>
  <script src="https://unpkg.com/3d-force-graph@1/dist/3d-force-graph.min.js"></script>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #0f172a;
      color: #e2e8f0;
    }
    header { padding: 16px 32px; }
    header .stats span { margin-right: 16px; font-size: 13px; color: #94a3b8; }
    #graph { margin: 0 32px; border-radius: 8px; overflow: hidden; }
    .graph-tooltip { background: rgba(15,23,42,0.9); padding: 6px 10px; border-radius: 4px; max-width: 280px; }
    #menu {
      position: absolute;
      display: none;
      background: #1e293b;
      border: 1px solid #334155;
      border-radius: 6px;
      padding: 4px 0;
      z-index: 1000;
      min-width: 160px;
    }
    #menu button {
      display: block;
      width: 100%;
      text-align: left;
      background: none;
      border: 0;
      color: inherit;
      padding: 6px 12px;
      cursor: pointer;
    }
    #menu button:hover { background: #334155; }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <div class="stats" data-mode="{{.Mode}}">
      <span>{{.Stats.TotalNodes}} nodes</span>
      <span>{{.Stats.RepositoryNodes}} projects</span>
      <span>{{.Stats.GroupNodes}} {{.Mode}} groups</span>
      <span>{{.Stats.TotalLinks}} connections</span>
    </div>
  </header>
  <div id="graph"></div>
  <div id="menu"></div>
  <script>
    const graphData = {{.GraphJSON}};
    const settings = {{.Settings}};

    function geometryFor(g) {
      switch (g.shape) {
        case 'octahedron': return new THREE.OctahedronGeometry(g.radius);
        case 'box': return new THREE.BoxGeometry(g.width, g.height, g.depth);
        case 'cylinder': return new THREE.CylinderGeometry(g.radius, g.radius, g.height);
        case 'tetrahedron': return new THREE.TetrahedronGeometry(g.radius);
        default: return new THREE.SphereGeometry(g.radius);
      }
    }

    const el = document.getElementById('graph');
    const menu = document.getElementById('menu');
    const hidden = new Set();
    let hovered = null;

    const Graph = ForceGraph3D()(el)
      .width(settings.width)
      .height(settings.height)
      .backgroundColor('rgba(0,0,0,0)')
      .graphData(graphData)
      .nodeLabel(n => n.label)
      .nodeThreeObject(n => {
        const m = n.mesh;
        const obj = new THREE.Mesh(
          geometryFor(m.geometry),
          new THREE.MeshPhongMaterial({
            color: m.material.color,
            transparent: m.material.transparent,
            opacity: m.material.opacity,
            shininess: m.material.shininess,
          })
        );
        n.__mesh = obj;
        return obj;
      })
      .nodeVisibility(n => !hidden.has(n.id))
      .linkVisibility(l => !hidden.has(l.source.id || l.source) && !hidden.has(l.target.id || l.target))
      .linkColor(() => settings.linkColor)
      .linkOpacity(settings.linkOpacity)
      .enableNodeDrag(false)
      .enableNavigationControls(true)
      .warmupTicks(settings.warmupTicks)
      .onNodeHover(n => {
        if (hovered && hovered.__mesh) hovered.__mesh.scale.set(1, 1, 1);
        if (n && n.__mesh) n.__mesh.scale.set(settings.hoverScale, settings.hoverScale, settings.hoverScale);
        hovered = n;
        el.style.cursor = n ? settings.cursor : 'auto';
      })
      .onNodeClick(n => {
        menu.style.display = 'none';
        if (n.url) { window.open(n.url, '_blank'); return; }
        focusNode(n);
      })
      .onNodeRightClick((n, ev) => openMenu(n, ev.clientX, ev.clientY))
      .onBackgroundClick(() => { menu.style.display = 'none'; })
      .onBackgroundRightClick(() => { menu.style.display = 'none'; });

    Graph.cameraPosition(settings.camera.position);
    const controls = Graph.controls();
    if (controls) {
      controls.minDistance = settings.camera.minDistance;
      controls.maxDistance = settings.camera.maxDistance;
    }
    setTimeout(() => Graph.zoomToFit(settings.zoomDuration, settings.zoomPadding), 500);

    function focusNode(n) {
      const dist = 120;
      const r = 1 + dist / Math.hypot(n.x, n.y, n.z);
      Graph.cameraPosition({ x: n.x * r, y: n.y * r, z: n.z * r }, n, 1000);
    }

    function openMenu(n, x, y) {
      menu.innerHTML = '';
      const add = (label, fn) => {
        const b = document.createElement('button');
        b.textContent = label;
        b.onclick = () => { menu.style.display = 'none'; fn(); };
        menu.appendChild(b);
      };
      if (n.url) add('Open ' + n.type, () => window.open(n.url, '_blank'));
      add('Focus neighbors', () => focusNode(n));
      if (n.url) add('Copy link', () => navigator.clipboard && navigator.clipboard.writeText(n.url));
      add('Hide node', () => {
        hidden.add(n.id);
        Graph.nodeVisibility(Graph.nodeVisibility()).linkVisibility(Graph.linkVisibility());
      });
      menu.style.left = x + 'px';
      menu.style.top = y + 'px';
      menu.style.display = 'block';
    }

    document.addEventListener('keydown', e => {
      if (e.key === 'Escape') menu.style.display = 'none';
    });
    window.addEventListener('resize', () => {
      const w = window.innerWidth > 64 ? window.innerWidth - 64 : 1200;
      Graph.width(w);
    });
  </script>
</body>
</html>`
