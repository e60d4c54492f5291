package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/bot/handlers"
	"github.com/avrorra/storebot/internal/bot/keyboard"
	"github.com/avrorra/storebot/internal/catalog"
	errs "github.com/avrorra/storebot/internal/errors"
	"github.com/avrorra/storebot/internal/i18n"
	"github.com/avrorra/storebot/internal/idempotency"
	"github.com/avrorra/storebot/internal/imagestore"
	"github.com/avrorra/storebot/internal/middleware"
	"github.com/avrorra/storebot/internal/screen"
	"github.com/avrorra/storebot/internal/session"
	"github.com/avrorra/storebot/pkg/config"
)

// Bot wraps telebot.Bot with the storefront wiring required for
// handling updates.
type Bot struct {
	telebot     *telebot.Bot
	log         *slog.Logger
	cfg         config.Config
	router      *Router
	rateLimitMw *middleware.RateLimitMiddleware
	errHandler  *errs.Handler
}

// New builds a telegram bot instance configured according to the
// application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	registry session.Registry,
	catalogSvc *catalog.Service,
	translator i18n.Translator,
	images *imagestore.Store,
	idempotencyManager idempotency.Manager,
	rateLimitMw *middleware.RateLimitMiddleware,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	screenManager := screen.NewManager(newTelegramTransport(tb), log)
	errHandler := errs.NewHandler(log, cfg.Sentry.Enabled)

	deps := handlers.Deps{
		Registry:   registry,
		Catalog:    catalogSvc,
		Screen:     screenManager,
		Translator: translator,
		Keyboard:   keyboard.NewBuilder(translator, log),
		Images:     images,
		Admins:     cfg.Admin,
		Contacts:   cfg.Contacts,
		PageSize:   cfg.Catalog.PageSize,
		Log:        log,
	}

	menuHandler := handlers.NewMenuHandler(deps)
	catalogHandler := handlers.NewCatalogHandler(deps)
	cartHandler := handlers.NewCartHandler(deps)
	checkoutHandler := handlers.NewCheckoutHandler(deps)
	adminHandler := handlers.NewAdminHandler(deps)

	dispatcher := NewDispatcher(registry, checkoutHandler, adminHandler, log)
	router := NewRouter(dispatcher, log)

	b := &Bot{
		telebot:     tb,
		log:         log,
		cfg:         cfg,
		router:      router,
		rateLimitMw: rateLimitMw,
		errHandler:  errHandler,
	}

	b.setupMiddlewares(idempotencyManager, translator)
	b.setupRoutes(translator, menuHandler, catalogHandler, cartHandler, checkoutHandler, adminHandler)

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations
// such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupMiddlewares(idempotencyManager idempotency.Manager, translator i18n.Translator) {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler, translator))
	b.router.Use(middleware.Idempotency(idempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler, translator))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(middleware.Metrics)
}

func (b *Bot) setupRoutes(
	translator i18n.Translator,
	menuHandler *handlers.MenuHandler,
	catalogHandler *handlers.CatalogHandler,
	cartHandler *handlers.CartHandler,
	checkoutHandler *handlers.CheckoutHandler,
	adminHandler *handlers.AdminHandler,
) {
	b.router.RegisterCommand(CommandStart, menuHandler.Start)
	b.router.RegisterCommand(CommandAdmin, adminHandler.Panel)

	b.router.RegisterText(translator.T("menu.catalog"), catalogHandler.Categories)
	b.router.RegisterText(translator.T("menu.cart"), cartHandler.Show)
	b.router.RegisterText(translator.T("menu.delivery"), menuHandler.Delivery)
	b.router.RegisterText(translator.T("menu.chat"), menuHandler.Chat)
	b.router.RegisterText(translator.T("menu.call"), menuHandler.Call)
	b.router.RegisterText(translator.T("menu.back_to_main"), menuHandler.Show)

	b.router.RegisterCallback(keyboard.ActionCategory, catalogHandler.Category)
	b.router.RegisterCallback(keyboard.ActionBackToCatalog, catalogHandler.Categories)
	b.router.RegisterCallback(keyboard.ActionProduct, catalogHandler.Product)
	b.router.RegisterCallback(keyboard.ActionAddToCart, catalogHandler.AddToCart)
	b.router.RegisterCallback(keyboard.ActionCardInc, catalogHandler.CardIncrement)
	b.router.RegisterCallback(keyboard.ActionCardDec, catalogHandler.CardDecrement)
	b.router.RegisterCallback(keyboard.ActionNoop, catalogHandler.Noop)
	b.router.RegisterCallback(keyboard.ActionContinue, catalogHandler.Categories)
	b.router.RegisterCallback(keyboard.ActionCheckout, checkoutHandler.Begin)

	b.router.RegisterCallback(keyboard.ActionCartEdit, cartHandler.Edit)
	b.router.RegisterCallback(keyboard.ActionCartItem, cartHandler.Item)
	b.router.RegisterCallback(keyboard.ActionCartInc, cartHandler.Increment)
	b.router.RegisterCallback(keyboard.ActionCartDec, cartHandler.Decrement)
	b.router.RegisterCallback(keyboard.ActionCartDelete, cartHandler.Delete)
	b.router.RegisterCallback(keyboard.ActionCartSave, cartHandler.Save)
	b.router.RegisterCallback(keyboard.ActionCartClear, cartHandler.Clear)

	b.router.RegisterCallback(keyboard.ActionAdminMenu, adminHandler.Menu)
	b.router.RegisterCallback(keyboard.ActionAdminCategories, adminHandler.Categories)
	b.router.RegisterCallback(keyboard.ActionAdminCategory, adminHandler.Category)
	b.router.RegisterCallback(keyboard.ActionAdminCatAdd, adminHandler.CategoryAdd)
	b.router.RegisterCallback(keyboard.ActionAdminCatRename, adminHandler.CategoryRename)
	b.router.RegisterCallback(keyboard.ActionAdminCatDelete, adminHandler.CategoryDelete)
	b.router.RegisterCallback(keyboard.ActionAdminProducts, adminHandler.Products)
	b.router.RegisterCallback(keyboard.ActionAdminProduct, adminHandler.Product)
	b.router.RegisterCallback(keyboard.ActionAdminProdAdd, adminHandler.ProductAdd)
	b.router.RegisterCallback(keyboard.ActionAdminProdCat, adminHandler.ProductCategory)
	b.router.RegisterCallback(keyboard.ActionAdminProdEdit, adminHandler.ProductEdit)
	b.router.RegisterCallback(keyboard.ActionAdminProdDelete, adminHandler.ProductDelete)
	b.router.RegisterCallback(keyboard.ActionAdminSkipPhoto, adminHandler.SkipPhoto)
	b.router.RegisterCallback(keyboard.ActionAdminCancel, adminHandler.Cancel)

	b.router.SetContact(checkoutHandler.Contact)
	b.router.SetPhoto(func(c telebot.Context) error {
		_, err := adminHandler.Photo(c)
		return err
	})
	b.router.SetDefault(menuHandler.Show)
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
	b.telebot.Handle(telebot.OnContact, b.router.Route)
	b.telebot.Handle(telebot.OnPhoto, b.router.Route)
}
