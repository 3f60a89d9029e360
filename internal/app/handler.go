package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/internal/auth"
	"github.com/Raimguhinov/sleep-monster/internal/creature"
	"github.com/Raimguhinov/sleep-monster/internal/feed"
	"github.com/Raimguhinov/sleep-monster/internal/usecase"
	"github.com/Raimguhinov/sleep-monster/internal/usecase/etag"
	"github.com/Raimguhinov/sleep-monster/pkg/logger"
)

var errBadRequest = errors.New("bad request")

type handler struct {
	svc    *usecase.Service
	logger *logger.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, alarm.ErrInvalid),
		errors.Is(err, creature.ErrBlankName),
		errors.Is(err, creature.ErrUnknownItem),
		errors.Is(err, creature.ErrUnknownSlot):
		code = http.StatusBadRequest
	case errors.Is(err, alarm.ErrSnoozeDisabled),
		errors.Is(err, creature.ErrNotUnlocked):
		code = http.StatusConflict
	}

	msg := err.Error()
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("user", auth.UserFrom(r.Context())),
			logger.Err(err),
		)
		msg = http.StatusText(code)
	}
	writeJSON(w, code, errorResponse{Error: msg})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, err.Error())
	}
	return nil
}

func alarmID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid alarm id", errBadRequest)
	}
	return id, nil
}

func (h *handler) listAlarms(w http.ResponseWriter, r *http.Request) {
	alarms, err := h.svc.AlarmList(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alarms)
}

func (h *handler) createAlarm(w http.ResponseWriter, r *http.Request) {
	var in usecase.AlarmInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.CreateAlarm(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handler) getAlarm(w http.ResponseWriter, r *http.Request) {
	id, err := alarmID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.Alarm(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) updateAlarm(w http.ResponseWriter, r *http.Request) {
	id, err := alarmID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in usecase.AlarmInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.UpdateAlarm(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) deleteAlarm(w http.ResponseWriter, r *http.Request) {
	id, err := alarmID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.DeleteAlarm(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) toggleAlarm(w http.ResponseWriter, r *http.Request) {
	id, err := alarmID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.ToggleAlarm(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type respondRequest struct {
	Action string     `json:"action"`
	At     *time.Time `json:"at"`
}

func (h *handler) respond(w http.ResponseWriter, r *http.Request) {
	id, err := alarmID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req respondRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	var at time.Time
	if req.At != nil {
		at = *req.At
	}
	res, err := h.svc.Respond(r.Context(), id, req.Action, at)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("alarm answered",
		slog.String("alarm_id", id.String()),
		slog.String("action", string(res.Outcome.Action)),
		slog.String("user", auth.UserFrom(r.Context())),
	)
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) feed(w http.ResponseWriter, r *http.Request) {
	data, tag, err := h.svc.Feed(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("ETag", etag.Header(tag))
	if etag.Matches(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", feed.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type triggersResponse struct {
	Pending   []alarm.Trigger `json:"pending"`
	Delivered []alarm.Trigger `json:"delivered"`
}

func (h *handler) triggers(w http.ResponseWriter, r *http.Request) {
	pending, delivered, err := h.svc.Triggers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, triggersResponse{Pending: pending, Delivered: delivered})
}

func (h *handler) resume(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Resume(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) getCreature(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Creature(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) revive(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Revive(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.svc.Rename(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) equip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.svc.Equip(r.Context(), req.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) unequip(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Unequip(r.Context(), creature.Slot(chi.URLParam(r, "slot")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) records(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Records(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if records == nil {
		records = []*creature.WakeUpRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		year  int
		month int
		err   error
	)
	if v := q.Get("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			h.fail(w, r, fmt.Errorf("%w: invalid year", errBadRequest))
			return
		}
	}
	if v := q.Get("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil || month < 1 || month > 12 {
			h.fail(w, r, fmt.Errorf("%w: invalid month", errBadRequest))
			return
		}
	}
	res, err := h.svc.Stats(r.Context(), year, time.Month(month))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type stageInfo struct {
	Stage          string `json:"stage"`
	RequiredStreak int    `json:"required_streak"`
	MinHP          int    `json:"min_hp"`
}

type catalogResponse struct {
	Accessories []creature.Accessory `json:"accessories"`
	Slots       []creature.Slot      `json:"slots"`
	Stages      []stageInfo          `json:"stages"`
	Sounds      []string             `json:"sounds"`
}

func (h *handler) catalog(w http.ResponseWriter, _ *http.Request) {
	res := catalogResponse{
		Accessories: creature.Catalog,
		Slots:       creature.Slots,
		Sounds:      alarm.Sounds,
	}
	for s := creature.StageEgg; s <= creature.StageMaster; s++ {
		res.Stages = append(res.Stages, stageInfo{
			Stage:          s.String(),
			RequiredStreak: s.RequiredStreak(),
			MinHP:          s.RequiredHP(),
		})
	}
	writeJSON(w, http.StatusOK, res)
}
