// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package api

import (
	"embed"
	"net/http"
)

// The UI is a single static page embedded into the binary, so the server
// ships as one artifact with no asset pipeline.
//
//go:embed static/index.html
var uiAssets embed.FS

// serveUI handles GET / with the embedded single-page interface.
func serveUI(writer http.ResponseWriter, request *http.Request) {
	page, err := uiAssets.ReadFile("static/index.html")
	if err != nil {
		http.Error(writer, "UI assets missing", http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(page)
}
