package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var communitiesCmd = &cobra.Command{
	Use:   "communities",
	Short: "Moderate communities you own",
	Long:  "Commands for reviewing join requests and managing members of communities you own",
}

var pendingCmd = &cobra.Command{
	Use:   "pending <community-id>",
	Short: "List pending join requests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPending(args[0])
	},
}

var membersCmd = &cobra.Command{
	Use:   "members <community-id>",
	Short: "List approved members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listMembers(args[0])
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <community-id> <membership-id>",
	Short: "Approve a pending join request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewRequest(args[0], args[1], "approve")
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <community-id> <membership-id>",
	Short: "Reject a pending join request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewRequest(args[0], args[1], "reject")
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <community-id> <membership-id>",
	Short: "Remove an approved member",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return removeMember(args[0], args[1])
	},
}

func init() {
	communitiesCmd.AddCommand(pendingCmd)
	communitiesCmd.AddCommand(membersCmd)
	communitiesCmd.AddCommand(approveCmd)
	communitiesCmd.AddCommand(rejectCmd)
	communitiesCmd.AddCommand(removeCmd)
}

type membershipPayload struct {
	Data []struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		Role        string `json:"role"`
		RequestedAt string `json:"requested_at"`
		User        struct {
			Username string `json:"username"`
			FullName string `json:"full_name"`
		} `json:"user"`
	} `json:"data"`
}

func listPending(communityID string) error {
	body, err := apiRequest("GET", "/api/v1/communities/"+communityID+"/requests", nil)
	if err != nil {
		return err
	}
	return printResult(body, func(body []byte) error {
		var payload membershipPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if len(payload.Data) == 0 {
			fmt.Println("No pending requests")
			return nil
		}
		for _, m := range payload.Data {
			fmt.Printf("%s  @%s (%s)  requested %s\n", m.ID, m.User.Username, m.User.FullName, m.RequestedAt)
		}
		return nil
	})
}

func listMembers(communityID string) error {
	body, err := apiRequest("GET", "/api/v1/communities/"+communityID+"/members", nil)
	if err != nil {
		return err
	}
	return printResult(body, func(body []byte) error {
		var payload membershipPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		for _, m := range payload.Data {
			fmt.Printf("%s  @%s  %s\n", m.ID, m.User.Username, m.Role)
		}
		fmt.Printf("%d members\n", len(payload.Data))
		return nil
	})
}

func reviewRequest(communityID, membershipID, action string) error {
	path := "/api/v1/communities/" + communityID + "/requests/" + membershipID + "/" + action
	body, err := apiRequest("POST", path, nil)
	if err != nil {
		return err
	}
	return printResult(body, func([]byte) error {
		fmt.Printf("Request %s %sd\n", membershipID, action)
		return nil
	})
}

func removeMember(communityID, membershipID string) error {
	path := "/api/v1/communities/" + communityID + "/members/" + membershipID + "/remove"
	body, err := apiRequest("POST", path, nil)
	if err != nil {
		return err
	}
	return printResult(body, func([]byte) error {
		fmt.Printf("Member %s removed\n", membershipID)
		return nil
	})
}
