package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cliptide/backend/internal/logger"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/util"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	log("Creating videos...")
	videos, err := s.seedVideos(users, 200)
	if err != nil {
		return fmt.Errorf("failed to seed videos: %w", err)
	}

	log("Creating communities...")
	communities, err := s.seedCommunities(users, 10)
	if err != nil {
		return fmt.Errorf("failed to seed communities: %w", err)
	}

	log("Creating memberships...")
	if err := s.seedMemberships(users, communities); err != nil {
		return fmt.Errorf("failed to seed memberships: %w", err)
	}

	log("Creating watch history...")
	if err := s.seedWatchHistory(users, videos); err != nil {
		return fmt.Errorf("failed to seed watch history: %w", err)
	}

	log("Creating watch later lists...")
	if err := s.seedWatchLater(users, videos); err != nil {
		return fmt.Errorf("failed to seed watch later: %w", err)
	}

	log("Creating playlists...")
	if err := s.seedPlaylists(users, videos, 30); err != nil {
		return fmt.Errorf("failed to seed playlists: %w", err)
	}

	log("Creating subscriptions...")
	if err := s.seedSubscriptions(users); err != nil {
		return fmt.Errorf("failed to seed subscriptions: %w", err)
	}

	return nil
}

// SeedTest seeds the test database with a small deterministic data set
func (s *Seeder) SeedTest() error {
	hash, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	testUsers := []models.User{
		{Email: "alice@test.cliptide.io", Username: "alice", FullName: "Alice Tester"},
		{Email: "bob@test.cliptide.io", Username: "bob", FullName: "Bob Tester"},
		{Email: "carol@test.cliptide.io", Username: "carol", FullName: "Carol Tester"},
	}
	for i := range testUsers {
		testUsers[i].PasswordHash = &hashStr
		testUsers[i].EmailVerified = true
		if err := s.db.Where("email = ?", testUsers[i].Email).
			FirstOrCreate(&testUsers[i]).Error; err != nil {
			return fmt.Errorf("failed to create test user %s: %w", testUsers[i].Username, err)
		}
	}

	now := time.Now()
	community := models.Community{
		Name:           "Test Community",
		NormalizedName: util.NormalizeSlug("Test Community"),
		Description:    "Fixture community for integration tests",
		Visibility:     models.CommunityPublic,
		OwnerID:        testUsers[0].ID,
	}
	if err := s.db.Where("normalized_name = ?", community.NormalizedName).
		FirstOrCreate(&community).Error; err != nil {
		return fmt.Errorf("failed to create test community: %w", err)
	}

	ownership := models.Membership{
		UserID:      testUsers[0].ID,
		CommunityID: community.ID,
		Role:        models.RoleOwner,
		Status:      models.StatusApproved,
		RequestedAt: now,
		JoinedAt:    &now,
	}
	if err := s.db.Where("user_id = ? AND community_id = ?", ownership.UserID, ownership.CommunityID).
		FirstOrCreate(&ownership).Error; err != nil {
		return fmt.Errorf("failed to create owner membership: %w", err)
	}

	return nil
}

// Clean removes all rows from every seeded table. Destructive; intended for
// development databases only.
func (s *Seeder) Clean() error {
	tables := []string{
		"watch_history",
		"watch_later",
		"playlist_videos",
		"playlists",
		"subscriptions",
		"memberships",
		"communities",
		"videos",
		"users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("devpassword123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := models.User{
			Email:         fmt.Sprintf("%s%d@dev.cliptide.io", gofakeit.Username(), i),
			Username:      fmt.Sprintf("%s%d", gofakeit.Username(), i),
			FullName:      gofakeit.Name(),
			PasswordHash:  &hashStr,
			EmailVerified: true,
			AvatarURL:     gofakeit.ImageURL(200, 200),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedVideos(users []models.User, count int) ([]models.Video, error) {
	videos := make([]models.Video, 0, count)
	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]
		video := models.Video{
			OwnerID:      owner.ID,
			Title:        gofakeit.Sentence(5),
			Description:  gofakeit.Paragraph(1, 3, 10, " "),
			VideoURL:     fmt.Sprintf("https://media.dev.cliptide.io/videos/seed/%d.mp4", i),
			ThumbnailURL: gofakeit.ImageURL(640, 360),
			Duration:     float64(gofakeit.Number(30, 3600)),
			ViewCount:    int64(gofakeit.Number(0, 100000)),
		}
		if err := s.db.Create(&video).Error; err != nil {
			return nil, err
		}
		if err := s.db.Model(&models.User{}).Where("id = ?", owner.ID).
			UpdateColumn("video_count", gorm.Expr("video_count + 1")).Error; err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, nil
}

func (s *Seeder) seedCommunities(users []models.User, count int) ([]models.Community, error) {
	now := time.Now()
	visibilities := []models.CommunityVisibility{
		models.CommunityPublic,
		models.CommunityPrivate,
		models.CommunityRestricted,
	}

	communities := make([]models.Community, 0, count)
	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]
		name := fmt.Sprintf("%s %s %d", gofakeit.Adjective(), gofakeit.Noun(), i)
		community := models.Community{
			Name:           name,
			NormalizedName: util.NormalizeSlug(name),
			Description:    gofakeit.Sentence(12),
			Visibility:     visibilities[rand.Intn(len(visibilities))],
			OwnerID:        owner.ID,
		}
		if err := s.db.Create(&community).Error; err != nil {
			return nil, err
		}
		ownership := models.Membership{
			UserID:      owner.ID,
			CommunityID: community.ID,
			Role:        models.RoleOwner,
			Status:      models.StatusApproved,
			RequestedAt: now,
			JoinedAt:    &now,
		}
		if err := s.db.Create(&ownership).Error; err != nil {
			return nil, err
		}
		communities = append(communities, community)
	}
	return communities, nil
}

// seedMemberships puts each user into a few random communities across the
// whole status lifecycle so review queues and member lists have content
func (s *Seeder) seedMemberships(users []models.User, communities []models.Community) error {
	now := time.Now()
	for _, user := range users {
		joins := rand.Intn(4)
		for j := 0; j < joins; j++ {
			community := communities[rand.Intn(len(communities))]
			if community.OwnerID == user.ID {
				continue
			}
			membership := models.Membership{
				UserID:      user.ID,
				CommunityID: community.ID,
				Role:        models.RoleMember,
				Status:      models.StatusPending,
				RequestedAt: now,
			}
			switch rand.Intn(4) {
			case 0, 1: // most requests get approved
				membership.Status = models.StatusApproved
				membership.JoinedAt = &now
			case 2:
				membership.Status = models.StatusRejected
			}
			err := s.db.Where("user_id = ? AND community_id = ?", user.ID, community.ID).
				FirstOrCreate(&membership).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedWatchHistory(users []models.User, videos []models.Video) error {
	for _, user := range users {
		watched := rand.Intn(models.WatchHistoryLimit)
		seen := rand.Perm(len(videos))
		for i := 0; i < watched && i < len(seen); i++ {
			entry := models.WatchHistoryEntry{
				UserID:  user.ID,
				VideoID: videos[seen[i]].ID,
			}
			if err := s.db.Create(&entry).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedWatchLater(users []models.User, videos []models.Video) error {
	for _, user := range users {
		saved := rand.Intn(8)
		picks := rand.Perm(len(videos))
		for i := 0; i < saved && i < len(picks); i++ {
			entry := models.WatchLaterEntry{
				UserID:  user.ID,
				VideoID: videos[picks[i]].ID,
			}
			if err := s.db.Create(&entry).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedPlaylists(users []models.User, videos []models.Video, count int) error {
	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]
		playlist := models.Playlist{
			Name:        gofakeit.Sentence(3),
			Description: gofakeit.Sentence(8),
			OwnerID:     owner.ID,
		}
		if err := s.db.Create(&playlist).Error; err != nil {
			return err
		}
		size := rand.Intn(10) + 1
		picks := rand.Perm(len(videos))
		for j := 0; j < size && j < len(picks); j++ {
			entry := models.PlaylistVideo{
				PlaylistID: playlist.ID,
				VideoID:    videos[picks[j]].ID,
			}
			if err := s.db.Create(&entry).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedSubscriptions(users []models.User) error {
	for _, user := range users {
		follows := rand.Intn(6)
		picks := rand.Perm(len(users))
		created := 0
		for _, idx := range picks {
			if created >= follows {
				break
			}
			channel := users[idx]
			if channel.ID == user.ID {
				continue
			}
			sub := models.Subscription{
				SubscriberID: user.ID,
				ChannelID:    channel.ID,
			}
			err := s.db.Where("subscriber_id = ? AND channel_id = ?", sub.SubscriberID, sub.ChannelID).
				FirstOrCreate(&sub).Error
			if err != nil {
				return err
			}
			err = s.db.Model(&models.User{}).Where("id = ?", channel.ID).
				UpdateColumn("subscriber_count", gorm.Expr("subscriber_count + 1")).Error
			if err != nil {
				return err
			}
			created++
		}
	}
	return nil
}
