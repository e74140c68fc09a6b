package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/models"
)

// profile fetches the current profile from the server (the cached user
// record is only a cache).
func (a *App) profile(ctx context.Context) error {
	user, err := a.apiClient.GetProfile(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Username:", user.Username)
	if user.Email != "" {
		fmt.Println("Email:   ", user.Email)
	}
	if user.Location != "" {
		fmt.Println("Location:", user.Location)
	}
	if user.Website != "" {
		fmt.Println("Website: ", user.Website)
	}
	return nil
}

// setProfile updates the editable profile fields. Empty answers leave the
// current values in place.
func (a *App) setProfile(ctx context.Context) error {
	current, err := a.apiClient.GetProfile(ctx)
	if err != nil {
		return err
	}

	location, err := getSimpleText(a.reader, "Location (empty to keep current)", os.Stdout)
	if err != nil {
		return err
	}
	website, err := getSimpleText(a.reader, "Website (empty to keep current)", os.Stdout)
	if err != nil {
		return err
	}

	update := models.UserRecord{
		Username: current.Username,
		Email:    current.Email,
		Location: current.Location,
		Website:  current.Website,
	}
	if location != "" {
		update.Location = location
	}
	if website != "" {
		update.Website = website
	}

	updated, err := a.apiClient.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}

	fmt.Println("Profile updated for", updated.Username)
	return nil
}
