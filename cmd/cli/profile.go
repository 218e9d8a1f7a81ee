package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile",
	Long:  "Commands for inspecting and updating your account profile",
}

var getProfileCmd = &cobra.Command{
	Use:   "get",
	Short: "Show your current profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getProfile()
	},
}

var setNameCmd = &cobra.Command{
	Use:   "set-name <full name>",
	Short: "Update your display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProfile(args[0])
	},
}

func init() {
	profileCmd.AddCommand(getProfileCmd)
	profileCmd.AddCommand(setNameCmd)
}

type profilePayload struct {
	Data struct {
		ID              string `json:"id"`
		Username        string `json:"username"`
		Email           string `json:"email"`
		FullName        string `json:"full_name"`
		EmailVerified   bool   `json:"email_verified"`
		SubscriberCount int    `json:"subscriber_count"`
		VideoCount      int    `json:"video_count"`
	} `json:"data"`
}

func getProfile() error {
	body, err := apiRequest("GET", "/api/v1/auth/me", nil)
	if err != nil {
		return err
	}
	return printResult(body, func(body []byte) error {
		var payload profilePayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		u := payload.Data
		fmt.Printf("Username:    %s\n", u.Username)
		fmt.Printf("Full name:   %s\n", u.FullName)
		fmt.Printf("Email:       %s (verified: %t)\n", u.Email, u.EmailVerified)
		fmt.Printf("Subscribers: %d\n", u.SubscriberCount)
		fmt.Printf("Videos:      %d\n", u.VideoCount)
		return nil
	})
}

func updateProfile(fullName string) error {
	payload := map[string]interface{}{
		"full_name": fullName,
	}
	body, err := apiRequest("PUT", "/api/v1/users/me", payload)
	if err != nil {
		return err
	}
	return printResult(body, func([]byte) error {
		fmt.Printf("Display name updated to %q\n", fullName)
		return nil
	})
}
