package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/util"
	"mindagrow_backend/pkg/logger"
	"mindagrow_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	SubmissionXP = 10

	leaderboardCachePrefix = "mindagrow:leaderboard:"
	leaderboardCacheTTL    = 60 * time.Second
)

// LevelForXP derives the level and the XP earned inside it from total XP.
func LevelForXP(totalXP int) (level, currentXP int) {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/model.XPPerLevel + 1, totalXP % model.XPPerLevel
}

// NextStreak applies one activity on today to a streak whose last activity
// date is lastDate (empty when the user never had one).
func NextStreak(current, longest int, lastDate string, today time.Time) (int, int) {
	todayStr := today.Format(util.DateFormat)
	yesterday := today.AddDate(0, 0, -1).Format(util.DateFormat)

	switch lastDate {
	case todayStr:
	case yesterday:
		current++
	default:
		current = 1
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

type XPResult struct {
	XPAwarded     int  `json:"xp_awarded"`
	TotalXP       int  `json:"total_xp"`
	Level         int  `json:"level"`
	CurrentXP     int  `json:"current_xp"`
	XPToNextLevel int  `json:"xp_to_next_level"`
	LeveledUp     bool `json:"leveled_up"`
}

type ActivityResult struct {
	XP                *XPResult            `json:"xp"`
	Streak            *model.UserStreak    `json:"streak"`
	CompletedMissions []model.DailyMission `json:"completed_missions"`
}

type MissionStatus struct {
	ID          uint              `json:"id"`
	Code        string            `json:"code"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	MissionType model.MissionType `json:"mission_type"`
	TargetCount int               `json:"target_count"`
	XPReward    int               `json:"xp_reward"`
	Progress    int               `json:"progress"`
	Completed   bool              `json:"completed"`
}

type StreakView struct {
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	LastActivityDate string `json:"last_activity_date"`
	ActiveToday      bool   `json:"active_today"`
}

type GamificationProfile struct {
	Level         int             `json:"level"`
	CurrentXP     int             `json:"current_xp"`
	TotalXP       int             `json:"total_xp"`
	XPToNextLevel int             `json:"xp_to_next_level"`
	Rank          int64           `json:"rank,omitempty"`
	Streak        StreakView      `json:"streak"`
	Missions      []MissionStatus `json:"missions"`
}

type LeaderboardEntry struct {
	Rank    int    `json:"rank"`
	UserID  uint   `json:"user_id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	Level   int    `json:"level"`
	TotalXP int    `json:"total_xp"`
}

type GamificationService struct {
	Repo  *repository.GamificationRepository
	Redis *redis.Client
	now   func() time.Time
}

func NewGamificationService(repo *repository.GamificationRepository, rdb *redis.Client) *GamificationService {
	return &GamificationService{Repo: repo, Redis: rdb, now: time.Now}
}

func (s *GamificationService) repo(tx *gorm.DB) *repository.GamificationRepository {
	if tx == nil {
		return s.Repo
	}
	return s.Repo.WithTx(tx)
}

// InitUser creates the level and streak rows of a new account.
func (s *GamificationService) InitUser(tx *gorm.DB, userID uint) error {
	repo := s.repo(tx)
	if _, err := repo.FindOrCreateLevel(userID); err != nil {
		return err
	}
	_, err := repo.FindOrCreateStreak(userID)
	return err
}

// AddXP awards amount XP and recomputes the level.
func (s *GamificationService) AddXP(tx *gorm.DB, userID uint, amount int) (*XPResult, error) {
	repo := s.repo(tx)
	lvl, err := repo.FindOrCreateLevel(userID)
	if err != nil {
		return nil, err
	}
	before := lvl.Level

	if amount > 0 {
		if err := repo.AddTotalXP(userID, amount); err != nil {
			return nil, err
		}
		if lvl, err = repo.FindOrCreateLevel(userID); err != nil {
			return nil, err
		}
	}

	level, current := LevelForXP(lvl.TotalXP)
	if level != lvl.Level || current != lvl.CurrentXP {
		lvl.Level, lvl.CurrentXP = level, current
		if err := repo.SaveLevel(lvl); err != nil {
			return nil, err
		}
	}

	result := &XPResult{
		XPAwarded:     amount,
		TotalXP:       lvl.TotalXP,
		Level:         lvl.Level,
		CurrentXP:     lvl.CurrentXP,
		XPToNextLevel: model.XPPerLevel - lvl.CurrentXP,
		LeveledUp:     lvl.Level > before,
	}
	if amount > 0 {
		monitoring.XPAwarded.Add(float64(amount))
		s.invalidateLeaderboard()
	}
	if result.LeveledUp {
		monitoring.LevelUps.Inc()
	}
	return result, nil
}

func (s *GamificationService) UpdateStreak(tx *gorm.DB, userID uint) (*model.UserStreak, error) {
	repo := s.repo(tx)
	streak, err := repo.FindOrCreateStreak(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := now.Format(util.DateFormat)
	current, longest := NextStreak(streak.CurrentStreak, streak.LongestStreak, streak.LastActivityDate, now)
	if current == streak.CurrentStreak && longest == streak.LongestStreak && streak.LastActivityDate == today {
		return streak, nil
	}

	streak.CurrentStreak, streak.LongestStreak, streak.LastActivityDate = current, longest, today
	if err := repo.SaveStreak(streak); err != nil {
		return nil, err
	}
	return streak, nil
}

// AdvanceMissions bumps today's progress on every active mission of type t
// and returns the missions completed by this step.
func (s *GamificationService) AdvanceMissions(tx *gorm.DB, userID uint, t model.MissionType) ([]model.DailyMission, error) {
	repo := s.repo(tx)
	missions, err := repo.ActiveMissionsByType(t)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := now.Format(util.DateFormat)
	completed := make([]model.DailyMission, 0)

	for _, m := range missions {
		p, err := repo.FindDailyProgress(userID, m.ID, today)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = &model.UserDailyProgress{UserID: userID, MissionID: m.ID, Date: today}
		} else if err != nil {
			return nil, err
		}
		if p.Completed {
			continue
		}

		p.Progress++
		if p.Progress >= m.TargetCount {
			p.Completed = true
			p.CompletedAt = &now
			completed = append(completed, m)
		}
		if err := repo.SaveDailyProgress(p); err != nil {
			return nil, err
		}
	}
	return completed, nil
}

// RecordActivity applies the side effects of one learning activity: the
// streak, mission progress of type t, and xp plus any mission rewards.
func (s *GamificationService) RecordActivity(tx *gorm.DB, userID uint, t model.MissionType, xp int) (*ActivityResult, error) {
	streak, err := s.UpdateStreak(tx, userID)
	if err != nil {
		return nil, fmt.Errorf("update streak: %w", err)
	}

	missions, err := s.AdvanceMissions(tx, userID, t)
	if err != nil {
		return nil, fmt.Errorf("advance missions: %w", err)
	}

	total := xp
	for _, m := range missions {
		total += m.XPReward
	}

	xpResult, err := s.AddXP(tx, userID, total)
	if err != nil {
		return nil, fmt.Errorf("add xp: %w", err)
	}

	return &ActivityResult{XP: xpResult, Streak: streak, CompletedMissions: missions}, nil
}

func (s *GamificationService) streakView(streak *model.UserStreak) StreakView {
	now := s.now()
	today := now.Format(util.DateFormat)
	yesterday := now.AddDate(0, 0, -1).Format(util.DateFormat)

	view := StreakView{
		CurrentStreak:    streak.CurrentStreak,
		LongestStreak:    streak.LongestStreak,
		LastActivityDate: streak.LastActivityDate,
		ActiveToday:      streak.LastActivityDate == today,
	}
	// The nightly reset may not have run yet.
	if streak.LastActivityDate != today && streak.LastActivityDate != yesterday {
		view.CurrentStreak = 0
	}
	return view
}

func (s *GamificationService) GetStreak(userID uint) (*StreakView, error) {
	streak, err := s.Repo.FindOrCreateStreak(userID)
	if err != nil {
		return nil, err
	}
	view := s.streakView(streak)
	return &view, nil
}

func (s *GamificationService) GetMissions(userID uint) ([]MissionStatus, error) {
	missions, err := s.Repo.ListActiveMissions()
	if err != nil {
		return nil, err
	}
	progress, err := s.Repo.ListDailyProgress(userID, s.now().Format(util.DateFormat))
	if err != nil {
		return nil, err
	}
	byMission := make(map[uint]model.UserDailyProgress, len(progress))
	for _, p := range progress {
		byMission[p.MissionID] = p
	}

	result := make([]MissionStatus, 0, len(missions))
	for _, m := range missions {
		p := byMission[m.ID]
		result = append(result, MissionStatus{
			ID:          m.ID,
			Code:        m.Code,
			Title:       m.Title,
			Description: m.Description,
			MissionType: m.MissionType,
			TargetCount: m.TargetCount,
			XPReward:    m.XPReward,
			Progress:    p.Progress,
			Completed:   p.Completed,
		})
	}
	return result, nil
}

func (s *GamificationService) GetProfile(userID uint) (*GamificationProfile, error) {
	lvl, err := s.Repo.FindOrCreateLevel(userID)
	if err != nil {
		return nil, err
	}
	streak, err := s.GetStreak(userID)
	if err != nil {
		return nil, err
	}
	missions, err := s.GetMissions(userID)
	if err != nil {
		return nil, err
	}
	rank, err := s.Repo.RankOf(lvl.TotalXP)
	if err != nil {
		return nil, err
	}

	return &GamificationProfile{
		Level:         lvl.Level,
		CurrentXP:     lvl.CurrentXP,
		TotalXP:       lvl.TotalXP,
		XPToNextLevel: model.XPPerLevel - lvl.CurrentXP,
		Rank:          rank,
		Streak:        *streak,
		Missions:      missions,
	}, nil
}

func (s *GamificationService) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	key := fmt.Sprintf("%s%d", leaderboardCachePrefix, limit)

	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, key).Bytes(); err == nil {
			var cached []LeaderboardEntry
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("Leaderboard cache read failed", zap.Error(err))
		}
	}

	levels, err := s.Repo.TopByXP(limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(levels))
	for i, lvl := range levels {
		entry := LeaderboardEntry{
			Rank:    i + 1,
			UserID:  lvl.UserID,
			Level:   lvl.Level,
			TotalXP: lvl.TotalXP,
		}
		if lvl.User != nil {
			entry.Name = lvl.User.Name
			entry.Avatar = lvl.User.Avatar
		}
		entries = append(entries, entry)
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := s.Redis.Set(ctx, key, raw, leaderboardCacheTTL).Err(); err != nil {
				logger.Log.Warn("Leaderboard cache write failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}

func (s *GamificationService) invalidateLeaderboard() {
	if s.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	keys, err := s.Redis.Keys(ctx, leaderboardCachePrefix+"*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	s.Redis.Del(ctx, keys...)
}

// ResetStaleStreaks zeroes the current streak of users inactive since
// before yesterday.
func (s *GamificationService) ResetStaleStreaks() (int64, error) {
	yesterday := s.now().AddDate(0, 0, -1).Format(util.DateFormat)
	return s.Repo.ResetStale(yesterday)
}
