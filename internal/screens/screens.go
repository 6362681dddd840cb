// Package screens builds one fetch.Resource per client screen on top of the
// API client.
package screens

import (
	"context"
	"time"

	"food-delivery-client/internal/apiclient"
	"food-delivery-client/internal/fetch"
	"food-delivery-client/internal/models"
	"food-delivery-client/internal/progress"
	"food-delivery-client/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// None is the parameter of screens that take no parameters.
type None struct{}

type HomeView struct {
	Restaurants     []models.Restaurant     `json:"restaurants"`
	Products        []models.Product        `json:"products"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

type RestaurantView struct {
	Restaurant *models.Restaurant `json:"restaurant"`
	Products   []models.Product   `json:"products"`
	Reviews    []models.Review    `json:"reviews"`
}

type TrackView struct {
	Order *models.Order `json:"order"`
	Step  int           `json:"step"`
	Steps []string      `json:"steps"`
}

type CourierView struct {
	Available []models.Order `json:"available"`
	Active    []models.Order `json:"active"`
	Delivered []models.Order `json:"delivered"`
}

type AdminView struct {
	Users       int `json:"users"`
	Restaurants int `json:"restaurants"`
	Products    int `json:"products"`
}

// Screens holds the data containers of every screen of the session.
type Screens struct {
	Home             *fetch.Resource[None, HomeView]
	Restaurant       *fetch.Resource[int64, RestaurantView]
	Product          *fetch.Resource[int64, *models.ProductDetails]
	Recommendations  *fetch.Resource[int, []models.Recommendation]
	Cart             *fetch.Resource[None, *models.Order]
	MyOrders         *fetch.Resource[None, []models.Order]
	Track            *fetch.Resource[int64, TrackView]
	Me               *fetch.Resource[None, *models.Account]
	Courier          *fetch.Resource[None, CourierView]
	Admin            *fetch.Resource[None, AdminView]
	AdminUsers       *fetch.Resource[None, []models.Account]
	AdminRestaurants *fetch.Resource[None, []models.Restaurant]
	AdminProducts    *fetch.Resource[int64, []models.Product]

	api     *apiclient.Client
	stepper *progress.Stepper
	now     func() time.Time
	logger  *zap.Logger
}

func New(api *apiclient.Client, stepper *progress.Stepper) *Screens {
	s := &Screens{
		api:     api,
		stepper: stepper,
		now:     time.Now,
		logger:  util.GetLogger(),
	}
	s.Home = fetch.NewResource("home", s.home)
	s.Restaurant = fetch.NewResource("restaurant", s.restaurant)
	s.Product = fetch.NewResource("product", api.Products.Details)
	s.Recommendations = fetch.NewResource("recommendations", s.recommendations)
	s.Cart = fetch.NewResource("cart", func(ctx context.Context, _ None) (*models.Order, error) {
		return api.Orders.Pending(ctx)
	})
	s.MyOrders = fetch.NewResource("my_orders", func(ctx context.Context, _ None) ([]models.Order, error) {
		return api.Orders.MyOrders(ctx)
	})
	s.Track = fetch.NewResource("track", s.track)
	s.Me = fetch.NewResource("me", func(ctx context.Context, _ None) (*models.Account, error) {
		return api.Users.Me(ctx)
	})
	s.Courier = fetch.NewResource("courier", s.courier)
	s.Admin = fetch.NewResource("admin", s.admin)
	s.AdminUsers = fetch.NewResource("admin_users", func(ctx context.Context, _ None) ([]models.Account, error) {
		return api.Admin.Users(ctx)
	})
	s.AdminRestaurants = fetch.NewResource("admin_restaurants", func(ctx context.Context, _ None) ([]models.Restaurant, error) {
		return api.Admin.Restaurants(ctx)
	})
	s.AdminProducts = fetch.NewResource("admin_products", s.adminProducts)
	return s
}

// Reset drops every screen's state, e.g. after logout. Loads in flight
// are discarded.
func (s *Screens) Reset() {
	s.Home.Reset()
	s.Restaurant.Reset()
	s.Product.Reset()
	s.Recommendations.Reset()
	s.Cart.Reset()
	s.MyOrders.Reset()
	s.Track.Reset()
	s.Me.Reset()
	s.Courier.Reset()
	s.Admin.Reset()
	s.AdminUsers.Reset()
	s.AdminRestaurants.Reset()
	s.AdminProducts.Reset()
}

// home loads the catalog. Recommendations are optional: a failure there
// only empties that section.
func (s *Screens) home(ctx context.Context, _ None) (HomeView, error) {
	var view HomeView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view.Restaurants, err = s.api.Restaurants.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		view.Products, err = s.api.Products.List(gctx)
		return err
	})
	g.Go(func() error {
		recs, err := s.api.Recommendations.TimeBased(gctx)
		if err != nil {
			s.logger.Debug("Recommendations unavailable", zap.Error(err))
			recs = []models.Recommendation{}
		}
		view.Recommendations = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return HomeView{}, err
	}
	return view, nil
}

func (s *Screens) restaurant(ctx context.Context, id int64) (RestaurantView, error) {
	var (
		view     RestaurantView
		products []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view.Restaurant, err = s.api.Restaurants.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.api.Products.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		view.Reviews, err = s.api.Reviews.List(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return RestaurantView{}, err
	}

	view.Products = make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.RestaurantID == id {
			view.Products = append(view.Products, p)
		}
	}
	return view, nil
}

// recommendations takes an hour of day; a negative hour means "now".
func (s *Screens) recommendations(ctx context.Context, hour int) ([]models.Recommendation, error) {
	if hour < 0 {
		return s.api.Recommendations.TimeBased(ctx)
	}
	return s.api.Recommendations.ForHour(ctx, hour)
}

func (s *Screens) track(ctx context.Context, orderID int64) (TrackView, error) {
	order, err := s.api.Orders.Track(ctx, orderID)
	if err != nil {
		return TrackView{}, err
	}
	view := TrackView{Order: order, Steps: progress.Steps}
	if s.stepper != nil {
		view.Step = s.stepper.Advance(ctx, order, s.now())
	}
	return view, nil
}

func (s *Screens) courier(ctx context.Context, _ None) (CourierView, error) {
	var view CourierView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view.Available, err = s.api.Orders.Confirmed(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		view.Active, err = s.api.Couriers.MyOrders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		view.Delivered, err = s.api.Couriers.MyDeliveredOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return CourierView{}, err
	}
	return view, nil
}

func (s *Screens) admin(ctx context.Context, _ None) (AdminView, error) {
	var view AdminView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.api.Admin.Users(gctx)
		view.Users = len(users)
		return err
	})
	g.Go(func() error {
		restaurants, err := s.api.Admin.Restaurants(gctx)
		view.Restaurants = len(restaurants)
		return err
	})
	g.Go(func() error {
		products, err := s.api.Admin.Products(gctx)
		view.Products = len(products)
		return err
	})
	if err := g.Wait(); err != nil {
		return AdminView{}, err
	}
	return view, nil
}

// adminProducts lists every product, or one restaurant's when id > 0.
func (s *Screens) adminProducts(ctx context.Context, restaurantID int64) ([]models.Product, error) {
	if restaurantID > 0 {
		return s.api.Admin.RestaurantProducts(ctx, restaurantID)
	}
	return s.api.Admin.Products(ctx)
}
