package community

import (
	"fmt"
	"os"
	"testing"

	"github.com/cliptide/backend/internal/database"
	apierrors "github.com/cliptide/backend/internal/errors"
	"github.com/cliptide/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestReviewGuard(t *testing.T) {
	acting := &models.Membership{UserID: "owner", CommunityID: "c1", Role: models.RoleOwner, Status: models.StatusApproved}

	tests := []struct {
		name     string
		target   *models.Membership
		wantCode apierrors.ErrorCode
	}{
		{
			name:   "pending request in same community passes",
			target: &models.Membership{UserID: "u1", CommunityID: "c1", Status: models.StatusPending},
		},
		{
			name:     "request from another community is forbidden",
			target:   &models.Membership{UserID: "u1", CommunityID: "c2", Status: models.StatusPending},
			wantCode: apierrors.ErrForbidden,
		},
		{
			name:     "reviewing own membership is forbidden",
			target:   &models.Membership{UserID: "owner", CommunityID: "c1", Status: models.StatusPending},
			wantCode: apierrors.ErrForbidden,
		},
		{
			name:     "already approved request is a bad request",
			target:   &models.Membership{UserID: "u1", CommunityID: "c1", Status: models.StatusApproved},
			wantCode: apierrors.ErrBadRequest,
		},
		{
			name:     "rejected request cannot be reviewed again",
			target:   &models.Membership{UserID: "u1", CommunityID: "c1", Status: models.StatusRejected},
			wantCode: apierrors.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reviewGuard(tt.target, acting)
			if tt.wantCode == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

func TestRemoveGuard(t *testing.T) {
	acting := &models.Membership{UserID: "owner", CommunityID: "c1", Role: models.RoleOwner, Status: models.StatusApproved}

	tests := []struct {
		name     string
		target   *models.Membership
		wantCode apierrors.ErrorCode
	}{
		{
			name:   "approved member in same community passes",
			target: &models.Membership{UserID: "u1", CommunityID: "c1", Status: models.StatusApproved},
		},
		{
			name:     "member of another community is forbidden",
			target:   &models.Membership{UserID: "u1", CommunityID: "c2", Status: models.StatusApproved},
			wantCode: apierrors.ErrForbidden,
		},
		{
			name:     "owner cannot remove themselves",
			target:   &models.Membership{UserID: "owner", CommunityID: "c1", Status: models.StatusApproved},
			wantCode: apierrors.ErrForbidden,
		},
		{
			name:     "pending member cannot be removed",
			target:   &models.Membership{UserID: "u1", CommunityID: "c1", Status: models.StatusPending},
			wantCode: apierrors.ErrBadRequest,
		},
		{
			name:     "already removed member cannot be removed again",
			target:   &models.Membership{UserID: "u1", CommunityID: "c1", Status: models.StatusRemoved},
			wantCode: apierrors.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := removeGuard(tt.target, acting)
			if tt.wantCode == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

func TestLeaveGuard(t *testing.T) {
	tests := []struct {
		name     string
		member   *models.Membership
		wantCode apierrors.ErrorCode
	}{
		{
			name:   "approved member can leave",
			member: &models.Membership{Role: models.RoleMember, Status: models.StatusApproved},
		},
		{
			name:     "owner cannot leave",
			member:   &models.Membership{Role: models.RoleOwner, Status: models.StatusApproved},
			wantCode: apierrors.ErrForbidden,
		},
		{
			name:     "pending requester cannot leave",
			member:   &models.Membership{Role: models.RoleMember, Status: models.StatusPending},
			wantCode: apierrors.ErrForbidden,
		},
		{
			name:     "removed member cannot leave again",
			member:   &models.Membership{Role: models.RoleMember, Status: models.StatusRemoved},
			wantCode: apierrors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := leaveGuard(tt.member)
			if tt.wantCode == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

func TestJoinConflictMessages(t *testing.T) {
	pending := joinConflict(&models.Membership{Status: models.StatusPending})
	assert.Contains(t, pending.Message, "pending")

	approved := joinConflict(&models.Membership{Status: models.StatusApproved})
	assert.Contains(t, approved.Message, "already a member")

	rejected := joinConflict(&models.Membership{Status: models.StatusRejected})
	assert.Contains(t, rejected.Message, "not allowed")

	removed := joinConflict(&models.Membership{Status: models.StatusRemoved})
	assert.Contains(t, removed.Message, "not allowed")
}

// MembershipServiceSuite exercises the full state machine against Postgres
type MembershipServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service
	owner   *models.User
	member  *models.User
}

func (suite *MembershipServiceSuite) SetupSuite() {
	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	port := getEnvOrDefault("POSTGRES_PORT", "5432")
	user := getEnvOrDefault("POSTGRES_USER", "postgres")
	password := getEnvOrDefault("POSTGRES_PASSWORD", "")
	dbname := getEnvOrDefault("POSTGRES_DB", "cliptide_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		dsn += " password=" + password
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		suite.T().Skipf("Skipping membership tests: database not available (%v)", err)
		return
	}

	require.NoError(suite.T(), database.Migrate(db))
	suite.db = db
	suite.service = NewService(db)
}

func (suite *MembershipServiceSuite) SetupTest() {
	if suite.db == nil {
		suite.T().Skip("database not available")
	}
	suite.db.Exec("DELETE FROM memberships")
	suite.db.Exec("DELETE FROM communities")
	suite.db.Exec("DELETE FROM users")

	suite.owner = &models.User{Email: "owner@test.com", Username: "owner", FullName: "Owner"}
	suite.member = &models.User{Email: "member@test.com", Username: "member", FullName: "Member"}
	require.NoError(suite.T(), suite.db.Create(suite.owner).Error)
	require.NoError(suite.T(), suite.db.Create(suite.member).Error)
}

func (suite *MembershipServiceSuite) createCommunity(name string) *models.Community {
	community, err := suite.service.Create(CreateInput{
		Name:       name,
		Visibility: models.CommunityPublic,
		OwnerID:    suite.owner.ID,
	})
	require.NoError(suite.T(), err)
	return community
}

func (suite *MembershipServiceSuite) ownerMembership(communityID string) *models.Membership {
	var m models.Membership
	require.NoError(suite.T(), suite.db.Where("user_id = ? AND community_id = ?", suite.owner.ID, communityID).First(&m).Error)
	return &m
}

func (suite *MembershipServiceSuite) TestCreateMakesOwnerMembership() {
	community := suite.createCommunity("Cool Club!!")
	assert.Equal(suite.T(), "cool-club", community.NormalizedName)

	m := suite.ownerMembership(community.ID)
	assert.Equal(suite.T(), models.RoleOwner, m.Role)
	assert.Equal(suite.T(), models.StatusApproved, m.Status)
	assert.NotNil(suite.T(), m.JoinedAt)
}

func (suite *MembershipServiceSuite) TestCreateDuplicateSlugConflicts() {
	suite.createCommunity("Cool Club")

	_, err := suite.service.Create(CreateInput{
		Name:       "cool CLUB!!",
		Visibility: models.CommunityPublic,
		OwnerID:    suite.owner.ID,
	})
	apiErr := apierrors.As(err)
	require.NotNil(suite.T(), apiErr)
	assert.Equal(suite.T(), apierrors.ErrConflict, apiErr.Code)
}

func (suite *MembershipServiceSuite) TestJoinApproveLifecycle() {
	community := suite.createCommunity("Lifecycle")

	request, err := suite.service.RequestJoin(community.ID, suite.member.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusPending, request.Status)
	assert.Equal(suite.T(), models.RoleMember, request.Role)
	assert.Nil(suite.T(), request.JoinedAt)

	approved, err := suite.service.Approve(request.ID, suite.ownerMembership(community.ID))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusApproved, approved.Status)
	assert.NotNil(suite.T(), approved.JoinedAt)

	members, err := suite.service.Members(community.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), members, 2)
}

func (suite *MembershipServiceSuite) TestDuplicateJoinConflicts() {
	community := suite.createCommunity("Dupes")

	_, err := suite.service.RequestJoin(community.ID, suite.member.ID)
	require.NoError(suite.T(), err)

	_, err = suite.service.RequestJoin(community.ID, suite.member.ID)
	apiErr := apierrors.As(err)
	require.NotNil(suite.T(), apiErr)
	assert.Equal(suite.T(), apierrors.ErrConflict, apiErr.Code)
	assert.Contains(suite.T(), apiErr.Message, "pending")
}

func (suite *MembershipServiceSuite) TestRejectedUserCannotRejoin() {
	community := suite.createCommunity("Strict")

	request, err := suite.service.RequestJoin(community.ID, suite.member.ID)
	require.NoError(suite.T(), err)

	_, err = suite.service.Reject(request.ID, suite.ownerMembership(community.ID))
	require.NoError(suite.T(), err)

	_, err = suite.service.RequestJoin(community.ID, suite.member.ID)
	apiErr := apierrors.As(err)
	require.NotNil(suite.T(), apiErr)
	assert.Equal(suite.T(), apierrors.ErrConflict, apiErr.Code)
	assert.Contains(suite.T(), apiErr.Message, "not allowed")
}

func (suite *MembershipServiceSuite) TestRemovedUserCannotRejoin() {
	community := suite.createCommunity("One Strike")
	acting := suite.ownerMembership(community.ID)

	request, err := suite.service.RequestJoin(community.ID, suite.member.ID)
	require.NoError(suite.T(), err)
	_, err = suite.service.Approve(request.ID, acting)
	require.NoError(suite.T(), err)

	removed, err := suite.service.Remove(request.ID, acting)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusRemoved, removed.Status)
	require.NotNil(suite.T(), removed.RemovedBy)
	assert.Equal(suite.T(), models.RemovedByOwner, *removed.RemovedBy)

	_, err = suite.service.RequestJoin(community.ID, suite.member.ID)
	apiErr := apierrors.As(err)
	require.NotNil(suite.T(), apiErr)
	assert.Equal(suite.T(), apierrors.ErrConflict, apiErr.Code)
}

func (suite *MembershipServiceSuite) TestLeaveMarksRemovedByUser() {
	community := suite.createCommunity("Revolving Door")
	acting := suite.ownerMembership(community.ID)

	request, err := suite.service.RequestJoin(community.ID, suite.member.ID)
	require.NoError(suite.T(), err)
	_, err = suite.service.Approve(request.ID, acting)
	require.NoError(suite.T(), err)

	left, err := suite.service.Leave(community.ID, suite.member.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusRemoved, left.Status)
	require.NotNil(suite.T(), left.RemovedBy)
	assert.Equal(suite.T(), models.RemovedByUser, *left.RemovedBy)
}

func (suite *MembershipServiceSuite) TestOwnerCannotLeave() {
	community := suite.createCommunity("Captain Stays")

	_, err := suite.service.Leave(community.ID, suite.owner.ID)
	apiErr := apierrors.As(err)
	require.NotNil(suite.T(), apiErr)
	assert.Equal(suite.T(), apierrors.ErrForbidden, apiErr.Code)
}

func (suite *MembershipServiceSuite) TestApproveAcrossCommunitiesForbidden() {
	first := suite.createCommunity("First")
	second := suite.createCommunity("Second")

	request, err := suite.service.RequestJoin(first.ID, suite.member.ID)
	require.NoError(suite.T(), err)

	_, err = suite.service.Approve(request.ID, suite.ownerMembership(second.ID))
	apiErr := apierrors.As(err)
	require.NotNil(suite.T(), apiErr)
	assert.Equal(suite.T(), apierrors.ErrForbidden, apiErr.Code)
}

func (suite *MembershipServiceSuite) TestPendingRequestsListsOnlyPending() {
	community := suite.createCommunity("Queue")
	acting := suite.ownerMembership(community.ID)

	other := &models.User{Email: "third@test.com", Username: "third", FullName: "Third"}
	require.NoError(suite.T(), suite.db.Create(other).Error)

	first, err := suite.service.RequestJoin(community.ID, suite.member.ID)
	require.NoError(suite.T(), err)
	_, err = suite.service.RequestJoin(community.ID, other.ID)
	require.NoError(suite.T(), err)

	_, err = suite.service.Approve(first.ID, acting)
	require.NoError(suite.T(), err)

	pending, err := suite.service.PendingRequests(community.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), pending, 1)
	assert.Equal(suite.T(), other.ID, pending[0].UserID)
}

func TestMembershipServiceSuite(t *testing.T) {
	suite.Run(t, new(MembershipServiceSuite))
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
