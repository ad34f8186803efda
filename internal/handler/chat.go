package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"finmate/internal/middleware"
	"finmate/internal/models"
	"finmate/internal/provider"
	"finmate/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ChatHandler answers assistant questions with the caller's own financial
// data as context. Provider failures degrade the reply, never the data.
type ChatHandler struct {
	DB    *gorm.DB
	Chat  provider.ChatClient
	Stats *StatsHandler
}

func NewChatHandler(db *gorm.DB, chat provider.ChatClient) *ChatHandler {
	return &ChatHandler{
		DB:    db,
		Chat:  chat,
		Stats: NewStatsHandler(db),
	}
}

type chatReq struct {
	Message string                 `json:"message" binding:"required,max=2000"`
	History []provider.ChatMessage `json:"history" binding:"max=20"`
}

// Ask handles POST /chat.
func (h *ChatHandler) Ask(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "message is required")
		return
	}

	finCtx, err := h.financialContext(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "assemble context failed")
		return
	}

	messages := make([]provider.ChatMessage, 0, len(req.History)+2)
	messages = append(messages, provider.ChatMessage{
		Role: "system",
		Content: "You are a personal finance assistant. Answer using the user's data below.\n" +
			finCtx,
	})
	messages = append(messages, req.History...)
	messages = append(messages, provider.ChatMessage{Role: "user", Content: req.Message})

	reply, err := h.Chat.Complete(c.Request.Context(), messages)
	if err != nil {
		util.Error(c, http.StatusBadGateway, util.CodeProviderErr, "assistant unavailable, try again later")
		return
	}

	util.Success(c, util.Response{"reply": reply})
}

// financialContext renders the caller's current-month summary, top expense
// categories and savings goals as plain text for the system prompt.
func (h *ChatHandler) financialContext(userID uint) (string, error) {
	now := time.Now()
	start, end := monthRange(now.Year(), int(now.Month()))

	summary, err := h.Stats.summarize(userID, start, end)
	if err != nil {
		return "", err
	}
	topExpense, err := h.Stats.breakdown(userID, "expense", start, end)
	if err != nil {
		return "", err
	}
	if len(topExpense) > 5 {
		topExpense = topExpense[:5]
	}

	var goals []models.SavingsGoal
	if err := h.DB.Where("user_id = ?", userID).Find(&goals).Error; err != nil {
		return "", fmt.Errorf("query goals: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Month %s: income %s, expense %s, balance %s.\n",
		now.Format("2006-01"), summary.TotalIncome, summary.TotalExpense, summary.Balance)
	if len(topExpense) > 0 {
		b.WriteString("Top expense categories: ")
		for i, row := range topExpense {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s %s", row.CategoryName, row.Total)
		}
		b.WriteString(".\n")
	}
	for _, g := range goals {
		fmt.Fprintf(&b, "Goal %q: %s of %s saved.\n", g.Name, g.CurrentAmount, g.TargetAmount)
	}
	return b.String(), nil
}
