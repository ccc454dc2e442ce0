// Package handlers implements the page endpoints: blog index, post detail,
// and syndication feeds. This file holds the HTML templates. Templates are
// compiled once at startup; everything they touch comes from a repository,
// so executing them performs no I/O.
package handlers

import "html/template"

var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "nav"}}<nav>{{range .}}<a href="{{.URL}}">{{.Title}}</a>{{end}}</nav>{{end}}

{{define "index"}}<!DOCTYPE html>
<html><head><title>{{.Blog.Title}}</title></head>
<body data-theme="{{.Theme}}">
{{template "nav" .NavLinks}}
<h1>{{.Blog.Title}}</h1>
{{if .Filter}}<p class="filter">{{.Filter}}</p>{{end}}
{{range .Posts}}<article>
<h2><a href="{{.URL}}">{{.Title}}</a></h2>
<p class="meta">{{.Owner}} — {{.Date}}</p>
{{if .CoverURL}}<img src="{{.CoverURL}}" alt="{{.CoverAlt}}">{{end}}
{{.BodyHTML}}
</article>{{end}}
{{if .PageHasAudio}}<script src="/static/player.js"></script>{{end}}
<ul class="pager">{{range .Pager}}<li>{{.}}</li>{{end}}</ul>
<aside>
<ul class="facet-months">{{range .Months}}<li>{{.Label}} ({{.Count}})</li>{{end}}</ul>
<ul class="facet-categories">{{range .Categories}}<li>{{.Label}} ({{.Count}})</li>{{end}}</ul>
<ul class="facet-tags">{{range .Tags}}<li>{{.Label}} ({{.Count}})</li>{{end}}</ul>
</aside>
</body></html>
{{end}}

{{define "detail"}}<!DOCTYPE html>
<html><head><title>{{.Title}} — {{.Blog.Title}}</title>
<link rel="canonical" href="{{.AbsoluteURL}}"></head>
<body data-theme="{{.Theme}}">
{{template "nav" .NavLinks}}
<article>
<h1>{{.Title}}</h1>
<p class="meta">{{.Owner}} — {{.Date}}</p>
{{if .CoverURL}}<img src="{{.CoverURL}}" alt="{{.CoverAlt}}">{{end}}
{{.BodyHTML}}
</article>
{{if .HasAudio}}<script src="/static/player.js"></script>{{end}}
{{if .CommentsEnabled}}<section id="comments"></section>{{end}}
</body></html>
{{end}}

{{define "error"}}<!DOCTYPE html>
<html><head><title>{{.Status}}</title></head>
<body><h1>{{.Status}}</h1><p>{{.Message}}</p></body></html>
{{end}}
`))
