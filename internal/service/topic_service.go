package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/domain/srs"
	"github.com/phrazzld/mnemo-api/internal/store"
	"github.com/phrazzld/mnemo-api/internal/task"
)

// TopicService provides topic-related operations, including the card
// operations that address cards by index within their topic. Every
// user-facing operation verifies the topic (or its deck) belongs to the
// requesting user; GetTopic and AppendGeneratedCards skip that check because
// the background task pipeline verifies ownership against its own payload.
type TopicService interface {
	// CreateTopic creates a new topic in one of the user's decks with fresh
	// scheduling state (due immediately)
	CreateTopic(ctx context.Context, userID, deckID uuid.UUID, name string) (*domain.Topic, error)

	// GetTopicForUser retrieves one of the user's topics by ID, cards included
	GetTopicForUser(ctx context.Context, userID, topicID uuid.UUID) (*domain.Topic, error)

	// ListDeckTopics returns a page of the deck's topics with the total count
	ListDeckTopics(
		ctx context.Context,
		userID, deckID uuid.UUID,
		page store.Pagination,
	) ([]*domain.Topic, int64, error)

	// ListDueTopics returns a page of the user's due topics, most overdue
	// first, with the total due count
	ListDueTopics(ctx context.Context, userID uuid.UUID, page store.Pagination) ([]*domain.Topic, int64, error)

	// RenameTopic changes the topic's name
	RenameTopic(ctx context.Context, userID, topicID uuid.UUID, name string) (*domain.Topic, error)

	// DeleteTopic removes one of the user's topics
	DeleteTopic(ctx context.Context, userID, topicID uuid.UUID) error

	// AddCard appends a card to the topic's collection and returns its index.
	// Returns domain.ErrTopicCardLimit when the topic is at the card cap.
	AddCard(ctx context.Context, userID, topicID uuid.UUID, card domain.Card) (int, error)

	// GetCard returns the card at the given index within the topic
	GetCard(ctx context.Context, userID, topicID uuid.UUID, index int) (domain.Card, error)

	// SetCardWeight sets the intrinsic weight of the card at the given index.
	// Out-of-range weights are clamped into the legal range, mirroring how
	// the scheduler treats weights on read. Returns the updated card.
	SetCardWeight(
		ctx context.Context,
		userID, topicID uuid.UUID,
		index int,
		weight float64,
	) (domain.Card, error)

	// RemoveCard deletes the card at the given index, shifting later cards down
	RemoveCard(ctx context.Context, userID, topicID uuid.UUID, index int) error

	// GetTopic retrieves a topic by ID without an ownership check. Part of
	// the task pipeline contract; the task verifies ownership itself.
	GetTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error)

	// AppendGeneratedCards appends cards to the topic's collection up to the
	// per-topic card cap and reports how many were added and how many were
	// dropped because the cap was reached. Part of the task pipeline contract.
	AppendGeneratedCards(
		ctx context.Context,
		topicID uuid.UUID,
		cards []domain.Card,
	) (added, dropped int, err error)
}

// TopicServiceImpl implements the TopicService interface
type TopicServiceImpl struct {
	topicStore store.TopicStore
	deckStore  store.DeckStore
	scheduler  srs.Service
	db         *sql.DB
	logger     *slog.Logger

	// now is swapped in tests for deterministic scheduling state
	now func() time.Time
}

// NewTopicService creates a new TopicService
func NewTopicService(
	topicStore store.TopicStore,
	deckStore store.DeckStore,
	scheduler srs.Service,
	db *sql.DB,
	logger *slog.Logger,
) *TopicServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}

	return &TopicServiceImpl{
		topicStore: topicStore,
		deckStore:  deckStore,
		scheduler:  scheduler,
		db:         db,
		logger:     logger.With("component", "topic_service"),
		now:        time.Now,
	}
}

// CreateTopic creates a new topic in one of the user's decks with fresh
// scheduling state
// Uses a transaction to ensure atomicity of the operation
func (s *TopicServiceImpl) CreateTopic(
	ctx context.Context,
	userID, deckID uuid.UUID,
	name string,
) (*domain.Topic, error) {
	// Verify the deck exists and belongs to the user before building the topic
	deck, err := s.deckStore.GetByID(ctx, deckID)
	if err != nil {
		s.logger.Debug("failed to retrieve deck for topic creation",
			"error", err,
			"deck_id", deckID)
		return nil, fmt.Errorf("failed to retrieve deck: %w", err)
	}
	if deck.UserID != userID {
		s.logger.Debug("deck owned by another user",
			"deck_id", deckID,
			"user_id", userID)
		return nil, ErrNotOwned
	}

	topic, err := domain.NewTopic(deckID, userID, name, s.scheduler.NewState(s.now().UTC()))
	if err != nil {
		s.logger.Debug("rejected invalid topic data",
			"error", err,
			"deck_id", deckID)
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.topicStore.WithTx(tx)
		return txStore.Create(ctx, topic)
	})
	if err != nil {
		s.logger.Error("failed to save topic to database",
			"error", err,
			"deck_id", deckID)
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	s.logger.Info("topic created successfully",
		"topic_id", topic.ID,
		"deck_id", deckID,
		"user_id", userID)

	return topic, nil
}

// GetTopicForUser retrieves one of the user's topics by ID
func (s *TopicServiceImpl) GetTopicForUser(
	ctx context.Context,
	userID, topicID uuid.UUID,
) (*domain.Topic, error) {
	topic, err := s.topicStore.GetByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, store.ErrTopicNotFound) {
			s.logger.Debug("topic not found",
				"topic_id", topicID)
		} else {
			s.logger.Error("failed to retrieve topic",
				"error", err,
				"topic_id", topicID)
		}
		return nil, fmt.Errorf("failed to retrieve topic: %w", err)
	}

	if topic.UserID != userID {
		s.logger.Debug("topic owned by another user",
			"topic_id", topicID,
			"user_id", userID)
		return nil, ErrNotOwned
	}

	return topic, nil
}

// ListDeckTopics returns a page of the deck's topics with the total count.
// The deck's ownership is checked first so listing a foreign deck behaves
// like listing a missing one.
func (s *TopicServiceImpl) ListDeckTopics(
	ctx context.Context,
	userID, deckID uuid.UUID,
	page store.Pagination,
) ([]*domain.Topic, int64, error) {
	deck, err := s.deckStore.GetByID(ctx, deckID)
	if err != nil {
		s.logger.Debug("failed to retrieve deck for topic listing",
			"error", err,
			"deck_id", deckID)
		return nil, 0, fmt.Errorf("failed to retrieve deck: %w", err)
	}
	if deck.UserID != userID {
		s.logger.Debug("deck owned by another user",
			"deck_id", deckID,
			"user_id", userID)
		return nil, 0, ErrNotOwned
	}

	topics, total, err := s.topicStore.ListByDeck(ctx, deckID, page)
	if err != nil {
		s.logger.Error("failed to list topics",
			"error", err,
			"deck_id", deckID)
		return nil, 0, fmt.Errorf("failed to list topics: %w", err)
	}

	s.logger.Debug("listed deck topics successfully",
		"deck_id", deckID,
		"count", len(topics),
		"total", total)

	return topics, total, nil
}

// ListDueTopics returns a page of the user's due topics, most overdue first
func (s *TopicServiceImpl) ListDueTopics(
	ctx context.Context,
	userID uuid.UUID,
	page store.Pagination,
) ([]*domain.Topic, int64, error) {
	topics, total, err := s.topicStore.ListDue(ctx, userID, s.now().UTC(), page)
	if err != nil {
		s.logger.Error("failed to list due topics",
			"error", err,
			"user_id", userID)
		return nil, 0, fmt.Errorf("failed to list due topics: %w", err)
	}

	s.logger.Debug("listed due topics successfully",
		"user_id", userID,
		"count", len(topics),
		"total", total)

	return topics, total, nil
}

// RenameTopic changes the topic's name
// Uses a transaction so the ownership check and the write see the same row
func (s *TopicServiceImpl) RenameTopic(
	ctx context.Context,
	userID, topicID uuid.UUID,
	name string,
) (*domain.Topic, error) {
	var updated *domain.Topic

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.topicStore.WithTx(tx)

		topic, err := s.getOwnedTopic(ctx, txStore, userID, topicID)
		if err != nil {
			return err
		}

		if err := topic.Rename(name); err != nil {
			s.logger.Debug("rejected invalid topic name",
				"error", err,
				"topic_id", topicID)
			return fmt.Errorf("invalid topic name: %w", err)
		}

		if err := txStore.Update(ctx, topic); err != nil {
			s.logger.Error("failed to update topic",
				"error", err,
				"topic_id", topicID)
			return fmt.Errorf("failed to update topic: %w", err)
		}

		updated = topic
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("topic renamed successfully in transaction",
		"topic_id", topicID,
		"user_id", userID)

	return updated, nil
}

// DeleteTopic removes one of the user's topics
// Uses a transaction so the ownership check and the delete see the same row
func (s *TopicServiceImpl) DeleteTopic(ctx context.Context, userID, topicID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.topicStore.WithTx(tx)

		if _, err := s.getOwnedTopic(ctx, txStore, userID, topicID); err != nil {
			return err
		}

		if err := txStore.Delete(ctx, topicID); err != nil {
			s.logger.Error("failed to delete topic",
				"error", err,
				"topic_id", topicID)
			return fmt.Errorf("failed to delete topic: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("topic deleted successfully in transaction",
		"topic_id", topicID,
		"user_id", userID)

	return nil
}

// AddCard appends a card to the topic's collection and returns its index
// Uses a transaction for the read-modify-write on the embedded card array
func (s *TopicServiceImpl) AddCard(
	ctx context.Context,
	userID, topicID uuid.UUID,
	card domain.Card,
) (int, error) {
	index := -1

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.topicStore.WithTx(tx)

		topic, err := s.getOwnedTopic(ctx, txStore, userID, topicID)
		if err != nil {
			return err
		}

		if err := topic.AddCard(card); err != nil {
			s.logger.Debug("rejected card",
				"error", err,
				"topic_id", topicID)
			return err
		}

		if err := txStore.Update(ctx, topic); err != nil {
			s.logger.Error("failed to save topic with new card",
				"error", err,
				"topic_id", topicID)
			return fmt.Errorf("failed to save card: %w", err)
		}

		index = len(topic.Cards) - 1
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("card added successfully in transaction",
		"topic_id", topicID,
		"card_index", index)

	return index, nil
}

// GetCard returns the card at the given index within the topic
func (s *TopicServiceImpl) GetCard(
	ctx context.Context,
	userID, topicID uuid.UUID,
	index int,
) (domain.Card, error) {
	topic, err := s.GetTopicForUser(ctx, userID, topicID)
	if err != nil {
		return domain.Card{}, err
	}

	card, err := topic.CardAt(index)
	if err != nil {
		s.logger.Debug("card index out of range",
			"topic_id", topicID,
			"card_index", index,
			"card_count", len(topic.Cards))
		return domain.Card{}, err
	}

	return card, nil
}

// SetCardWeight sets the intrinsic weight of the card at the given index,
// clamping out-of-range values into the legal range
// Uses a transaction for the read-modify-write on the embedded card array
func (s *TopicServiceImpl) SetCardWeight(
	ctx context.Context,
	userID, topicID uuid.UUID,
	index int,
	weight float64,
) (domain.Card, error) {
	// Manual weight updates accept any value and clamp it, the same
	// treatment the scheduler gives weights it reads
	if weight < domain.MinCardWeight {
		weight = domain.MinCardWeight
	}
	if weight > domain.MaxCardWeight {
		weight = domain.MaxCardWeight
	}

	var updated domain.Card

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.topicStore.WithTx(tx)

		topic, err := s.getOwnedTopic(ctx, txStore, userID, topicID)
		if err != nil {
			return err
		}

		if err := topic.SetCardWeight(index, weight); err != nil {
			s.logger.Debug("failed to set card weight",
				"error", err,
				"topic_id", topicID,
				"card_index", index)
			return err
		}

		if err := txStore.Update(ctx, topic); err != nil {
			s.logger.Error("failed to save topic with updated weight",
				"error", err,
				"topic_id", topicID)
			return fmt.Errorf("failed to save card weight: %w", err)
		}

		updated = topic.Cards[index]
		return nil
	})
	if err != nil {
		return domain.Card{}, err
	}

	s.logger.Info("card weight updated successfully in transaction",
		"topic_id", topicID,
		"card_index", index,
		"weight", weight)

	return updated, nil
}

// RemoveCard deletes the card at the given index
// Uses a transaction for the read-modify-write on the embedded card array
func (s *TopicServiceImpl) RemoveCard(
	ctx context.Context,
	userID, topicID uuid.UUID,
	index int,
) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.topicStore.WithTx(tx)

		topic, err := s.getOwnedTopic(ctx, txStore, userID, topicID)
		if err != nil {
			return err
		}

		if err := topic.RemoveCard(index); err != nil {
			s.logger.Debug("failed to remove card",
				"error", err,
				"topic_id", topicID,
				"card_index", index)
			return err
		}

		if err := txStore.Update(ctx, topic); err != nil {
			s.logger.Error("failed to save topic after card removal",
				"error", err,
				"topic_id", topicID)
			return fmt.Errorf("failed to remove card: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("card removed successfully in transaction",
		"topic_id", topicID,
		"card_index", index)

	return nil
}

// GetTopic retrieves a topic by ID without an ownership check.
// Part of the task pipeline contract (task.TopicService).
func (s *TopicServiceImpl) GetTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error) {
	topic, err := s.topicStore.GetByID(ctx, topicID)
	if err != nil {
		s.logger.Error("failed to retrieve topic",
			"error", err,
			"topic_id", topicID)
		return nil, fmt.Errorf("failed to retrieve topic: %w", err)
	}

	return topic, nil
}

// AppendGeneratedCards appends cards to the topic's collection up to the
// per-topic card cap. Cards beyond the cap are dropped, not an error: a
// generation that overshoots the remaining space still delivers what fits.
// Part of the task pipeline contract (task.TopicService).
func (s *TopicServiceImpl) AppendGeneratedCards(
	ctx context.Context,
	topicID uuid.UUID,
	cards []domain.Card,
) (int, int, error) {
	if len(cards) == 0 {
		return 0, 0, nil
	}

	var added, dropped int

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.topicStore.WithTx(tx)

		topic, err := txStore.GetByID(ctx, topicID)
		if err != nil {
			s.logger.Error("failed to retrieve topic for card append",
				"error", err,
				"topic_id", topicID)
			return fmt.Errorf("failed to retrieve topic: %w", err)
		}

		space := domain.MaxCardsPerTopic - len(topic.Cards)
		if space < 0 {
			space = 0
		}

		added = len(cards)
		if added > space {
			added = space
		}
		dropped = len(cards) - added

		for _, card := range cards[:added] {
			if err := topic.AddCard(card); err != nil {
				s.logger.Error("generated card failed validation",
					"error", err,
					"topic_id", topicID)
				return fmt.Errorf("generated card is invalid: %w", err)
			}
		}

		if added > 0 {
			if err := txStore.Update(ctx, topic); err != nil {
				s.logger.Error("failed to save topic with generated cards",
					"error", err,
					"topic_id", topicID)
				return fmt.Errorf("failed to save generated cards: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	if dropped > 0 {
		s.logger.Warn("dropped generated cards beyond the topic's card cap",
			"topic_id", topicID,
			"added", added,
			"dropped", dropped)
	} else {
		s.logger.Info("appended generated cards in transaction",
			"topic_id", topicID,
			"added", added)
	}

	return added, dropped, nil
}

// getOwnedTopic loads the topic through the given store and verifies it
// belongs to the user.
func (s *TopicServiceImpl) getOwnedTopic(
	ctx context.Context,
	txStore store.TopicStore,
	userID, topicID uuid.UUID,
) (*domain.Topic, error) {
	topic, err := txStore.GetByID(ctx, topicID)
	if err != nil {
		s.logger.Debug("failed to retrieve topic",
			"error", err,
			"topic_id", topicID)
		return nil, fmt.Errorf("failed to retrieve topic: %w", err)
	}

	if topic.UserID != userID {
		s.logger.Debug("topic owned by another user",
			"topic_id", topicID,
			"user_id", userID)
		return nil, ErrNotOwned
	}

	return topic, nil
}

// Ensure TopicServiceImpl implements both the service interface and the task
// pipeline's contract
var (
	_ TopicService      = (*TopicServiceImpl)(nil)
	_ task.TopicService = (*TopicServiceImpl)(nil)
)
