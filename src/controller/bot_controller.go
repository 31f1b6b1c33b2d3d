package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gitlab.com/open-soft/go-vote-trader/src/model"
	"gitlab.com/open-soft/go-vote-trader/src/repository"
	"gitlab.com/open-soft/go-vote-trader/src/service"
	"gitlab.com/open-soft/go-vote-trader/src/service/exchange"
	"gitlab.com/open-soft/go-vote-trader/src/service/scheduler"
)

type BotController struct {
	CurrentBot         *model.Bot
	ConfigService      service.ConfigServiceInterface
	Coordinator        *exchange.ExecutionCoordinator
	Scheduler          *scheduler.DecisionScheduler
	TradeRepository    *repository.TradeRepository
	SettingsRepository *repository.SettingsRepository
}

type statusResponse struct {
	Bot          model.Bot             `json:"bot"`
	Settings     model.TradingSettings `json:"settings"`
	Portfolio    model.PortfolioState  `json:"portfolio"`
	Positions    []model.Position      `json:"positions"`
	Decisions    []model.Decision      `json:"decisions"`
	LastDecision *model.Decision       `json:"lastDecision"`
}

func (b *BotController) GetHealthCheckAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprintf(w, "OK")
		return
	}

	encoded, _ := json.Marshal(map[string]string{
		"status":  "ok",
		"botUuid": b.CurrentBot.BotUuid,
	})

	fmt.Fprintf(w, "%s", string(encoded))
}

func (b *BotController) GetStatusAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprintf(w, "OK")
		return
	}

	if !b.authorized(req) {
		http.Error(w, "Forbidden", http.StatusForbidden)

		return
	}

	response := statusResponse{
		Bot:          *b.CurrentBot,
		Settings:     b.ConfigService.GetActual(),
		Portfolio:    b.Coordinator.GetPortfolio(),
		Positions:    b.Coordinator.ActivePositions(),
		Decisions:    b.TradeRepository.GetRecentDecisions(20),
		LastDecision: b.TradeRepository.GetLastDecision(),
	}

	encoded, err := json.Marshal(response)

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	fmt.Fprintf(w, "%s", string(encoded))
}

func (b *BotController) GetPositionListAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprintf(w, "OK")
		return
	}

	if !b.authorized(req) {
		http.Error(w, "Forbidden", http.StatusForbidden)

		return
	}

	encoded, _ := json.Marshal(b.Coordinator.ActivePositions())

	fmt.Fprintf(w, "%s", string(encoded))
}

// PostTriggerCycleAction runs one decision cycle on demand, through
// the same path as the interval timer.
func (b *BotController) PostTriggerCycleAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprintf(w, "OK")
		return
	}

	if !b.authorized(req) {
		http.Error(w, "Forbidden", http.StatusForbidden)

		return
	}

	if req.Method != "POST" {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)

		return
	}

	if err := b.Scheduler.ForceTrigger(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	fmt.Fprintf(w, "OK")
}

func (b *BotController) PostCloseAllAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprintf(w, "OK")
		return
	}

	if !b.authorized(req) {
		http.Error(w, "Forbidden", http.StatusForbidden)

		return
	}

	if req.Method != "POST" {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)

		return
	}

	closed := b.Coordinator.CloseAll("manual close all", b.ConfigService.GetActual())

	encoded, _ := json.Marshal(map[string]int{"closed": closed})

	fmt.Fprintf(w, "%s", string(encoded))
}

func (b *BotController) PutSettingsAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprintf(w, "OK")
		return
	}

	if !b.authorized(req) {
		http.Error(w, "Forbidden", http.StatusForbidden)

		return
	}

	if req.Method != "PUT" {
		http.Error(w, "Only PUT method is allowed", http.StatusMethodNotAllowed)

		return
	}

	var settings model.TradingSettings

	err := json.NewDecoder(req.Body).Decode(&settings)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	if err := b.SettingsRepository.UpdateSettings(settings); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	fmt.Fprintf(w, "OK")
}

func (b *BotController) authorized(req *http.Request) bool {
	return req.URL.Query().Get("botUuid") == b.CurrentBot.BotUuid
}
