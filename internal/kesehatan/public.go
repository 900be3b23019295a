package kesehatan

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ngipak/infodesa/internal/server"
	"github.com/ngipak/infodesa/internal/status"
)

// IMTResponse is the BMI calculator result. Valid is false when the input
// cannot be evaluated; Result is then omitted.
type IMTResponse struct {
	Valid  bool              `json:"valid"`
	Result *status.BMIResult `json:"result,omitempty"`
}

// handlePage returns the published health page. Sections that fail to
// load are reported in warnings while the rest is still returned.
//
//	@Summary		Health page
//	@Description	Schedules are filtered by region and free text over activity, region and location.
//	@Tags			kesehatan
//	@Produce		json
//	@Param			dusun	query		string	false	"Region ID or all"
//	@Param			q		query		string	false	"Schedule query"
//	@Success		200		{object}	Page
//	@Router			/kesehatan/page [get]
func (p *Plugin) handlePage(w http.ResponseWriter, r *http.Request) {
	snap := Load(r.Context(), p.sources(), p.logger)
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, buildPage(snap, q.Get("dusun"), q.Get("q")))
}

// handleIMT computes an adult BMI.
//
//	@Summary	BMI calculator
//	@Tags		kesehatan
//	@Produce	json
//	@Param		berat	query		number	true	"Weight in kg"
//	@Param		tinggi	query		number	true	"Height in cm"
//	@Success	200		{object}	IMTResponse
//	@Router		/kesehatan/imt [get]
func (p *Plugin) handleIMT(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	berat, errB := parseNumber(q.Get("berat"))
	tinggi, errT := parseNumber(q.Get("tinggi"))
	if errB != nil || errT != nil {
		writeJSON(w, http.StatusOK, IMTResponse{})
		return
	}
	res, ok := status.BMI(berat, tinggi)
	if !ok {
		writeJSON(w, http.StatusOK, IMTResponse{})
		return
	}
	writeJSON(w, http.StatusOK, IMTResponse{Valid: true, Result: &res})
}

// parseNumber accepts a decimal comma as typed on Indonesian keyboards.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		server.BadRequest(w, "Format permintaan tidak valid.", r.URL.Path)
		return false
	}
	return true
}
