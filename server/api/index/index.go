package index

import (
	"encoding/json"
	"net/http"
)

// IndexHandlerFn 主頁：列出可用的 API 入口，方便本機快速確認服務活著。
func IndexHandlerFn(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"service": "dicelab",
		"routes": []string{
			"GET/POST /v1/lock",
			"GET/POST /v1/resolve",
			"GET/POST /v1/sim",
			"GET/POST /v1/simsession",
			"POST     /v1/simbycfg",
			"POST     /v1/stat",
			"GET      /dev",
		},
	})
}
