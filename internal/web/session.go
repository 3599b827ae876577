package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"ipopredict/pkg/predictor"
)

// latestCookie carries the most recent prediction between tab switches. It
// is a session cookie: closing the browser forgets it.
const latestCookie = "ipo_latest"

func setLatest(w http.ResponseWriter, res *predictor.PredictionResult) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     latestCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// latest returns the prediction stored by setLatest, or nil when there is
// none or it cannot be read.
func latest(r *http.Request) *predictor.PredictionResult {
	c, err := r.Cookie(latestCookie)
	if err != nil {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var res predictor.PredictionResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil
	}
	return &res
}
