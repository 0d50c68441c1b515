package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"bitcoin-watcher-go/internal/models"
	"go.uber.org/zap"
)

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}

// CurrentPrice returns the most recent price sample and the latest signal.
// The signal may be null if none has been generated yet.
func (h *Handler) CurrentPrice(w http.ResponseWriter, r *http.Request) {
	price, err := h.prices.Latest()
	if err != nil {
		h.logger.Error("Failed to read latest price", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if price == nil {
		h.writeError(w, http.StatusNotFound, "no price data available")
		return
	}

	sig, err := h.signals.FindLatest()
	if err != nil {
		h.logger.Error("Failed to read latest signal", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Price  *models.PricePoint `json:"price"`
		Signal *models.Signal     `json:"signal"`
	}{Price: price, Signal: sig})
}

// PriceHistory returns the price samples of the last N hours (default 24).
func (h *Handler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid hours parameter")
			return
		}
		hours = parsed
	}

	now := time.Now().UTC()
	points, err := h.prices.Range(now.Add(-time.Duration(hours)*time.Hour), now)
	if err != nil {
		h.logger.Error("Failed to query price history", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string][]models.PricePoint{"prices": points})
}

// SignalHistory returns the most recent dispatched notifications (default 50).
func (h *Handler) SignalHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	notifications, err := h.notifications.Recent(limit)
	if err != nil {
		h.logger.Error("Failed to query notifications", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string][]models.Notification{"notifications": notifications})
}

// GetSettings returns the effective settings (overrides merged onto defaults).
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get()
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

// UpdateSettings applies a partial settings override. Absent fields keep
// their stored or default values.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsOverride
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if patch.TradingMode != nil && *patch.TradingMode != "sandbox" && *patch.TradingMode != "live" {
		h.writeError(w, http.StatusBadRequest, "trading_mode must be sandbox or live")
		return
	}
	if patch.SellPercentage != nil && (*patch.SellPercentage <= 0 || *patch.SellPercentage > 100) {
		h.writeError(w, http.StatusBadRequest, "sell_percentage must be in (0,100]")
		return
	}

	if err := h.settings.Update(patch); err != nil {
		h.logger.Error("Failed to update settings", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "settings updated successfully"})
}
