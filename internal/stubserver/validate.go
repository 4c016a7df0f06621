package stubserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type validationResult struct {
	FieldPath     string `json:"field_path"`
	Status        string `json:"status"`
	Justification string `json:"justification"`
}

// validate applies deterministic per-field heuristics so client behavior is
// reproducible in tests: a "?" in the value or a too-short description
// draws an objection, everything else passes.
func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Payload          map[string]any `json:"payload"`
		FieldsToValidate []string       `json:"fields_to_validate"`
	}
	if err := decode(r, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed body")
		return
	}

	results := make([]validationResult, 0, len(body.FieldsToValidate))
	summary := map[string]int{"success": 0, "objection": 0}
	for _, path := range body.FieldsToValidate {
		res := judge(path, lookup(body.Payload, path))
		results = append(results, res)
		summary[res.Status]++
	}

	s.mu.Lock()
	rec := s.sessions[id]
	version := int64(len(rec.Versions) + 1)
	s.mu.Unlock()

	s.log.Info("validated",
		zap.String("session_id", id),
		zap.Int("fields", len(results)),
		zap.Int("objections", summary["objection"]),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"version": version,
		"results": results,
		"summary": summary,
	})
}

func judge(path string, value any) validationResult {
	str, _ := value.(string)
	switch {
	case strings.Contains(str, "?"):
		return validationResult{
			FieldPath:     path,
			Status:        "objection",
			Justification: "Wartość wygląda na niepewną — doprecyzuj pole.",
		}
	case strings.HasSuffix(path, "_description") && len([]rune(str)) < 10:
		return validationResult{
			FieldPath:     path,
			Status:        "objection",
			Justification: "Opis jest zbyt krótki, dodaj więcej szczegółów.",
		}
	default:
		return validationResult{
			FieldPath:     path,
			Status:        "success",
			Justification: "Pole poprawne.",
		}
	}
}

// lookup walks a dotted path through nested JSON objects.
func lookup(obj map[string]any, path string) any {
	var curr any = obj
	for _, key := range strings.Split(path, ".") {
		m, ok := curr.(map[string]any)
		if !ok {
			return nil
		}
		curr = m[key]
	}
	return curr
}
