package server

import "github.com/joseph-ayodele/screenchat/internal/core/pipeline"

const pageTemplateName = "page"

// page is everything the form shows; it is built fresh for every request.
type page struct {
	Model      string
	Filename   string
	Error      string
	Warning    string
	Transcript string
	Completion string
}

func renderPage(model, filename string, out pipeline.Outcome) page {
	p := page{
		Model:      model,
		Filename:   filename,
		Transcript: out.Transcript.Display(),
	}
	if out.Skipped {
		p.Warning = "No text found in image."
	}
	if out.Asked {
		p.Completion = out.Completion.Display()
	}
	return p
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Screenshot Chatbot</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
textarea { width: 100%; min-height: 10rem; }
.error { color: #b00020; }
.warning { color: #8a6d00; }
</style>
</head>
<body>
<h1>Screenshot Chatbot via Perplexity Sonar</h1>
<p>Model: {{.Model}}</p>
<form method="post" action="/" enctype="multipart/form-data">
<input type="file" name="image" accept="image/png,image/jpeg" required>
<button type="submit">Ask</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Filename}}<p>Image: {{.Filename}}</p>{{end}}
{{if .Warning}}<p class="warning">{{.Warning}}</p>{{end}}
<h2>Extracted Text</h2>
<textarea id="transcript" readonly>{{.Transcript}}</textarea>
<h2>AI Response</h2>
<textarea id="completion" readonly>{{.Completion}}</textarea>
</body>
</html>
`
