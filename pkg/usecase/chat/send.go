package chat

import (
	"context"
	"time"

	"github.com/fa-friend/fa/pkg/adapter"
	"github.com/fa-friend/fa/pkg/brain"
	"github.com/fa-friend/fa/pkg/memory"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/fa-friend/fa/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// fallbackName addresses the user when even the user record cannot be read
const fallbackName = "เพื่อน"

// Result is the outcome of one chat turn
type Result struct {
	Reply           string `json:"reply"`
	HasReminder     bool   `json:"has_reminder"`
	ReminderMessage string `json:"reminder_message,omitempty"`
	ReminderTime    string `json:"reminder_time,omitempty"`
}

// Send handles one user message. The only error returned is
// model.ErrUserNotFound; every other fault degrades to a valid reply.
func (u *UseCase) Send(ctx context.Context, userID model.UserID, message string) (*Result, error) {
	logger := logging.From(ctx).With("user_id", userID)
	ctx = logging.With(ctx, logger)

	user, err := u.repo.GetUser(ctx, userID)
	if err != nil {
		logger.Error("failed to load user", logging.ErrAttr(err))
		return &Result{Reply: brain.FailureReply(fallbackName)}, nil
	}
	if user == nil {
		return nil, goerr.Wrap(model.ErrUserNotFound, "chat with unknown user", goerr.V("user_id", userID))
	}

	now := u.now()

	userMsg := &model.Message{
		ID:        model.NewMessageID(),
		UserID:    userID,
		Role:      model.RoleUser,
		Content:   message,
		CreatedAt: now,
	}
	if err := u.repo.SaveMessage(ctx, userMsg); err != nil {
		logger.Error("failed to save user message", logging.ErrAttr(err))
	}

	uc := u.assembleContext(ctx, user, now)

	if reply, ok := u.matcher.TryLocalReply(message, user.Name, uc); ok {
		u.saveReply(ctx, userID, reply)
		logger.Info("local reply", "category", brain.Category(message))
		return &Result{Reply: reply}, nil
	}

	return u.modelTurn(ctx, user, userMsg, uc, now), nil
}

func (u *UseCase) modelTurn(ctx context.Context, user *model.User, userMsg *model.Message, uc *model.UserContext, now time.Time) *Result {
	logger := logging.From(ctx)

	mem, err := u.repo.GetMemory(ctx, user.ID)
	memLoaded := err == nil
	if err != nil {
		logger.Warn("failed to load memory", logging.ErrAttr(err))
	}
	if mem == nil {
		mem = model.NewMemory(user.Name)
	}

	history := u.recentHistory(ctx, user.ID, userMsg.ID)

	system, err := brain.BuildSystemPrompt(brain.PromptInput{
		Name:    user.Name,
		Persona: user.Persona,
		Memory:  mem,
		Context: uc,
		Now:     now,
	})
	if err != nil {
		logger.Error("failed to build system prompt", logging.ErrAttr(err))
		return &Result{Reply: brain.FailureReply(user.Name)}
	}

	if u.llm == nil {
		logger.Warn("no model gateway configured")
		return &Result{Reply: brain.GatewayFailureReply(user.Name)}
	}

	raw, err := u.llm.Chat(ctx, adapter.ChatInput{
		System:  system,
		History: history,
		Message: userMsg.Content,
	})
	if err != nil {
		logger.Error("model call failed", logging.ErrAttr(err))
		return &Result{Reply: brain.GatewayFailureReply(user.Name)}
	}

	parsed := brain.ParseModelReply(raw)
	if parsed.Reply == "" {
		parsed.Reply = brain.FailureReply(user.Name)
	}
	u.saveReply(ctx, user.ID, parsed.Reply)

	if parsed.MemoryUpdate != "" && !memLoaded {
		// writing now would replace the stored memory with an empty one
		logger.Warn("memory update dropped", "fact", parsed.MemoryUpdate)
	} else if parsed.MemoryUpdate != "" {
		memory.ApplyMemoryUpdate(mem, parsed.MemoryUpdate, now)
		if err := u.repo.PutMemory(ctx, user.ID, mem, now); err != nil {
			logger.Error("failed to save memory", logging.ErrAttr(err))
		}
	}

	result := &Result{Reply: parsed.Reply}
	if parsed.Reminder == "" {
		return result
	}

	spec, ok := brain.NormalizeReminderText(parsed.Reminder, now)
	if !ok {
		logger.Info("model reminder not understood", "reminder", parsed.Reminder)
		return result
	}
	reminder := &model.Reminder{
		ID:        model.NewReminderID(),
		UserID:    user.ID,
		Message:   spec.Message,
		RemindAt:  spec.RemindAt,
		CreatedAt: now,
	}
	if err := u.repo.AddReminder(ctx, reminder); err != nil {
		logger.Error("failed to add reminder", logging.ErrAttr(err))
		return result
	}

	result.HasReminder = true
	result.ReminderMessage = spec.Message
	result.ReminderTime = spec.RemindAt
	return result
}

// assembleContext gathers the live signals of the turn. A failing read
// leaves its signal empty.
func (u *UseCase) assembleContext(ctx context.Context, user *model.User, now time.Time) *model.UserContext {
	logger := logging.From(ctx)
	today := clock.Date(now)

	uc := &model.UserContext{
		WakeTime:  user.WakeTime,
		SleepTime: user.SleepTime,
	}

	since := clock.Date(now.AddDate(0, 0, -moodWindowDays))
	if moods, err := u.repo.GetMoodHistory(ctx, user.ID, since); err != nil {
		logger.Warn("failed to load mood history", logging.ErrAttr(err))
	} else {
		uc.MoodHistory = moods
	}

	if status, err := u.repo.GetRoutineStatus(ctx, user.ID, today); err != nil {
		logger.Warn("failed to load routine status", logging.ErrAttr(err))
	} else {
		uc.RoutineStatus = status
	}

	if reminders, err := u.repo.ListPendingReminders(ctx, user.ID); err != nil {
		logger.Warn("failed to load reminders", logging.ErrAttr(err))
	} else {
		uc.PendingReminders = reminders
	}

	if stats, err := u.repo.GetUserStats(ctx, user.ID, today); err != nil {
		logger.Warn("failed to load stats", logging.ErrAttr(err))
	} else {
		uc.Streak = stats.Streak
		uc.TotalPoints = stats.TotalPoints
	}

	if alerts, err := u.repo.ListRecentCriticalAlerts(ctx, now, now.Add(-alertWindow), maxContextAlerts); err != nil {
		logger.Warn("failed to load critical alerts", logging.ErrAttr(err))
	} else {
		uc.CriticalAlerts = alerts
	}

	return uc
}

// recentHistory returns the turns before the current message, oldest first
func (u *UseCase) recentHistory(ctx context.Context, userID model.UserID, current model.MessageID) []*model.Message {
	msgs, err := u.repo.ListRecentMessages(ctx, userID, historyLimit+1)
	if err != nil {
		logging.From(ctx).Warn("failed to load recent messages", logging.ErrAttr(err))
		return nil
	}

	if n := len(msgs); n > 0 && msgs[n-1].ID == current {
		return msgs[:n-1]
	}
	if len(msgs) > historyLimit {
		return msgs[len(msgs)-historyLimit:]
	}
	return msgs
}

func (u *UseCase) saveReply(ctx context.Context, userID model.UserID, reply string) {
	err := u.repo.SaveMessage(ctx, &model.Message{
		ID:        model.NewMessageID(),
		UserID:    userID,
		Role:      model.RoleAssistant,
		Content:   reply,
		CreatedAt: u.now(),
	})
	if err != nil {
		logging.From(ctx).Error("failed to save reply", logging.ErrAttr(err))
	}
}
