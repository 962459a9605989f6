package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/platefeed/backend/internal/models"
	"github.com/pageza/platefeed/backend/internal/repository"
)

// RelationService toggles membership in the three "marked" relations:
// favorites, shopping cart, and subscriptions. Adds are strict (duplicate ->
// conflict) and removes are strict (missing -> not found), so callers get an
// explicit signal instead of a silent no-op.
type RelationService struct {
	db        *gorm.DB
	favorites *repository.EdgeRepo[models.Favorite]
	cart      *repository.EdgeRepo[models.ShoppingCartEntry]
	follows   *repository.FollowRepo
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{
		db:        db,
		favorites: repository.NewEdgeRepo[models.Favorite](db),
		cart:      repository.NewEdgeRepo[models.ShoppingCartEntry](db),
		follows:   repository.NewFollowRepo(db),
	}
}

func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.addRecipeEdge(ctx, s.favorites, "favorites", userID, recipeID)
}

func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeRecipeEdge(ctx, s.favorites, "favorites", userID, recipeID)
}

func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.addRecipeEdge(ctx, s.cart, "shopping cart", userID, recipeID)
}

func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeRecipeEdge(ctx, s.cart, "shopping cart", userID, recipeID)
}

// FavoriteIDs returns the recipe ids the user has favorited.
func (s *RelationService) FavoriteIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.favorites.RecipeIDs(ctx, userID)
}

// CartIDs returns the recipe ids in the user's shopping cart.
func (s *RelationService) CartIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.cart.RecipeIDs(ctx, userID)
}

// FollowingIDs returns the author ids the user subscribes to.
func (s *RelationService) FollowingIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.follows.AuthorIDs(ctx, userID)
}

// Subscribe creates a follower -> author edge. Self-follows are invalid
// regardless of any other state.
func (s *RelationService) Subscribe(ctx context.Context, followerID, authorID uuid.UUID) (*models.User, error) {
	if followerID == authorID {
		return nil, fmt.Errorf("%w: cannot subscribe to yourself", ErrValidation)
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, authorID)
		}
		return nil, err
	}

	exists, err := s.follows.Exists(ctx, followerID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: already subscribed", ErrConflict)
	}

	if err := s.follows.Add(ctx, followerID, authorID); err != nil {
		return nil, err
	}
	return &author, nil
}

func (s *RelationService) Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) error {
	removed, err := s.follows.Remove(ctx, followerID, authorID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: not subscribed to this user", ErrNotFound)
	}
	return nil
}

// Subscriptions lists the followed authors, ordered by id, paginated.
func (s *RelationService) Subscriptions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.User, int64, error) {
	return s.follows.Authors(ctx, userID, limit, offset)
}

func (s *RelationService) addRecipeEdge(ctx context.Context, repo interface {
	Exists(context.Context, uuid.UUID, uuid.UUID) (bool, error)
	Add(context.Context, uuid.UUID, uuid.UUID) error
}, relation string, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipe %s", ErrNotFound, recipeID)
		}
		return nil, err
	}

	exists, err := repo.Exists(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: recipe already in %s", ErrConflict, relation)
	}

	if err := repo.Add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *RelationService) removeRecipeEdge(ctx context.Context, repo interface {
	Remove(context.Context, uuid.UUID, uuid.UUID) (bool, error)
}, relation string, userID, recipeID uuid.UUID) error {
	removed, err := repo.Remove(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: recipe not in %s", ErrNotFound, relation)
	}
	return nil
}
