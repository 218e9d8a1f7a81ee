package community

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/cliptide/backend/internal/errors"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/util"
	"gorm.io/gorm"
)

// Service implements the community membership workflow: request, approval,
// rejection, removal and self-initiated departure, under role-based
// authorization. All mutating operations take the acting membership as
// resolved by the permission middleware, never from caller input.
type Service struct {
	db *gorm.DB
}

// NewService creates a membership service bound to a database handle
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput carries the validated fields for community creation
type CreateInput struct {
	Name        string
	Description string
	Visibility  models.CommunityVisibility
	OwnerID     string
	AvatarURL   string
}

// Create creates a community and its owner membership in one transaction.
// The owner membership starts APPROVED with role OWNER; no join request is
// involved.
func (s *Service) Create(input CreateInput) (*models.Community, error) {
	slug := util.NormalizeSlug(input.Name)
	if slug == "" {
		return nil, errors.ValidationError("name", "community name must contain letters or digits")
	}
	if !input.Visibility.Valid() {
		return nil, errors.ValidationError("visibility", "visibility must be public, private or restricted")
	}

	var existing models.Community
	err := s.db.Where("normalized_name = ?", slug).First(&existing).Error
	if err == nil {
		return nil, errors.Conflict("community name already exists")
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	community := &models.Community{
		Name:           input.Name,
		NormalizedName: slug,
		Description:    input.Description,
		Visibility:     input.Visibility,
		OwnerID:        input.OwnerID,
		AvatarURL:      input.AvatarURL,
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		ownerMembership := &models.Membership{
			UserID:      input.OwnerID,
			CommunityID: community.ID,
			Role:        models.RoleOwner,
			Status:      models.StatusApproved,
			RequestedAt: now,
			JoinedAt:    &now,
		}
		return tx.Create(ownerMembership).Error
	})
	if err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("community name already exists")
		}
		return nil, fmt.Errorf("failed to create community: %w", err)
	}

	return community, nil
}

// RequestJoin files a membership request for a community. Exactly one
// membership record ever exists per (user, community) pair; any existing
// record, whatever its status, blocks a new request.
func (s *Service) RequestJoin(communityID, userID string) (*models.Membership, error) {
	var community models.Community
	if err := s.db.First(&community, "id = ?", communityID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("community")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing models.Membership
	err := s.db.Where("user_id = ? AND community_id = ?", userID, communityID).First(&existing).Error
	if err == nil {
		return nil, joinConflict(&existing)
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	membership := &models.Membership{
		UserID:      userID,
		CommunityID: communityID,
		Role:        models.RoleMember,
		Status:      models.StatusPending,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.db.Create(membership).Error; err != nil {
		// A concurrent duplicate request loses the race at the unique index
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("a membership request already exists for this community")
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	return membership, nil
}

// joinConflict maps an existing membership to the status-specific error a
// repeat join request receives
func joinConflict(existing *models.Membership) *errors.APIError {
	switch existing.Status {
	case models.StatusPending:
		return errors.Conflict("your request to join this community is already pending approval")
	case models.StatusApproved:
		return errors.Conflict("you are already a member of this community")
	default:
		return errors.Conflict("you are not allowed to join this community again")
	}
}

// reviewGuard checks the shared preconditions for approve and reject:
// the target belongs to the acting owner's community, is still PENDING,
// and is not the actor's own record
func reviewGuard(target, acting *models.Membership) *errors.APIError {
	if target.CommunityID != acting.CommunityID {
		return errors.Forbidden("membership request belongs to a different community")
	}
	if target.UserID == acting.UserID {
		return errors.Forbidden("you cannot review your own membership")
	}
	if target.Status != models.StatusPending {
		return errors.BadRequest("membership request is not pending")
	}
	return nil
}

// removeGuard checks the preconditions for owner-initiated removal
func removeGuard(target, acting *models.Membership) *errors.APIError {
	if target.CommunityID != acting.CommunityID {
		return errors.Forbidden("membership belongs to a different community")
	}
	if target.UserID == acting.UserID {
		return errors.Forbidden("you cannot remove your own membership")
	}
	if target.Status != models.StatusApproved {
		return errors.BadRequest("only approved members can be removed")
	}
	return nil
}

// leaveGuard checks the preconditions for self-initiated departure
func leaveGuard(m *models.Membership) *errors.APIError {
	if m.Status != models.StatusApproved {
		return errors.Forbidden("you are not an active member of this community")
	}
	if m.Role == models.RoleOwner {
		return errors.Forbidden("community owners cannot leave their own community")
	}
	return nil
}

// Approve transitions a PENDING membership to APPROVED and stamps joined_at
func (s *Service) Approve(membershipID string, acting *models.Membership) (*models.Membership, error) {
	target, err := s.findMembership(membershipID)
	if err != nil {
		return nil, err
	}
	if guardErr := reviewGuard(target, acting); guardErr != nil {
		return nil, guardErr
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":    models.StatusApproved,
		"joined_at": now,
	}
	if err := s.db.Model(target).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to approve membership: %w", err)
	}
	target.Status = models.StatusApproved
	target.JoinedAt = &now
	return target, nil
}

// Reject transitions a PENDING membership to REJECTED
func (s *Service) Reject(membershipID string, acting *models.Membership) (*models.Membership, error) {
	target, err := s.findMembership(membershipID)
	if err != nil {
		return nil, err
	}
	if guardErr := reviewGuard(target, acting); guardErr != nil {
		return nil, guardErr
	}

	updates := map[string]interface{}{
		"status":    models.StatusRejected,
		"joined_at": nil,
	}
	if err := s.db.Model(target).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to reject membership: %w", err)
	}
	target.Status = models.StatusRejected
	target.JoinedAt = nil
	return target, nil
}

// Remove transitions an APPROVED membership to REMOVED on behalf of the
// community owner
func (s *Service) Remove(membershipID string, acting *models.Membership) (*models.Membership, error) {
	target, err := s.findMembership(membershipID)
	if err != nil {
		return nil, err
	}
	if guardErr := removeGuard(target, acting); guardErr != nil {
		return nil, guardErr
	}

	removedBy := models.RemovedByOwner
	updates := map[string]interface{}{
		"status":     models.StatusRemoved,
		"joined_at":  nil,
		"removed_by": removedBy,
	}
	if err := s.db.Model(target).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}
	target.Status = models.StatusRemoved
	target.JoinedAt = nil
	target.RemovedBy = &removedBy
	return target, nil
}

// Leave transitions the caller's own APPROVED membership to REMOVED.
// Owners cannot leave; ownership transfer is not supported.
func (s *Service) Leave(communityID, userID string) (*models.Membership, error) {
	var membership models.Membership
	err := s.db.Where("user_id = ? AND community_id = ?", userID, communityID).First(&membership).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("membership")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if guardErr := leaveGuard(&membership); guardErr != nil {
		return nil, guardErr
	}

	removedBy := models.RemovedByUser
	updates := map[string]interface{}{
		"status":     models.StatusRemoved,
		"joined_at":  nil,
		"removed_by": removedBy,
	}
	if err := s.db.Model(&membership).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to leave community: %w", err)
	}
	membership.Status = models.StatusRemoved
	membership.JoinedAt = nil
	membership.RemovedBy = &removedBy
	return &membership, nil
}

// Members returns a community's approved memberships with user profiles
func (s *Service) Members(communityID string) ([]models.Membership, error) {
	var members []models.Membership
	err := s.db.Where("community_id = ? AND status = ?", communityID, models.StatusApproved).
		Preload("User").
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	return members, nil
}

// PendingRequests returns a community's PENDING memberships, oldest first
func (s *Service) PendingRequests(communityID string) ([]models.Membership, error) {
	var requests []models.Membership
	err := s.db.Where("community_id = ? AND status = ?", communityID, models.StatusPending).
		Preload("User").
		Order("requested_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending requests: %w", err)
	}
	return requests, nil
}

// findMembership loads a membership by id or returns NotFound
func (s *Service) findMembership(membershipID string) (*models.Membership, error) {
	var membership models.Membership
	err := s.db.First(&membership, "id = ?", membershipID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("membership")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &membership, nil
}
