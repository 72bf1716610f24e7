package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nutrition-tracker/models"
	"nutrition-tracker/repositories"
	"nutrition-tracker/utils"

	"gorm.io/gorm"
)

type UserService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// ProfileInput is a partial update; nil fields are left untouched.
type ProfileInput struct {
	FullName         *string  `json:"fullName" binding:"omitempty,max=255"`
	Age              *int     `json:"age" binding:"omitempty,gt=0,lt=150"`
	Weight           *float64 `json:"weight" binding:"omitempty,gt=0"`
	Height           *float64 `json:"height" binding:"omitempty,gt=0"`
	Gender           *string  `json:"gender"`
	ActivityLevel    *string  `json:"activityLevel"`
	DailyCalorieGoal *int     `json:"dailyCalorieGoal" binding:"omitempty,gt=0"`
}

// ProfileView is the profile as returned to its owner, with BMI derived from
// height and weight when both are set and plausible.
type ProfileView struct {
	*models.User
	BMI         *float64 `json:"bmi,omitempty"`
	BMICategory string   `json:"bmiCategory,omitempty"`
}

func NewProfileView(u *models.User) *ProfileView {
	v := &ProfileView{User: u}
	if u.Height == nil || u.Weight == nil {
		return v
	}
	bmi, err := utils.CalculateBMI(*u.Height, *u.Weight)
	if err != nil {
		return v
	}
	bmi = round2(bmi)
	v.BMI = &bmi
	v.BMICategory = utils.BMICategory(bmi)
	return v
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return u, err
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Age != nil {
		u.Age = in.Age
	}
	if in.Weight != nil {
		u.Weight = in.Weight
	}
	if in.Height != nil {
		u.Height = in.Height
	}
	if in.Gender != nil {
		g := models.Gender(strings.ToUpper(strings.TrimSpace(*in.Gender)))
		switch g {
		case models.GenderMale, models.GenderFemale, models.GenderOther:
			u.Gender = g
		default:
			return nil, fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, *in.Gender)
		}
	}
	if in.ActivityLevel != nil {
		lvl := models.ActivityLevel(strings.ToUpper(strings.TrimSpace(*in.ActivityLevel)))
		if !utils.ValidActivityLevel(lvl) {
			return nil, fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, *in.ActivityLevel)
		}
		u.ActivityLevel = lvl
	}
	if in.DailyCalorieGoal != nil {
		u.DailyCalorieGoal = in.DailyCalorieGoal
	}

	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// RecommendedCalories returns nil when the profile lacks the inputs for the estimate.
func (s *UserService) RecommendedCalories(ctx context.Context, userID uint) (*int, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return utils.RecommendedCalories(u), nil
}
