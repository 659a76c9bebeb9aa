package config

import (
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/shopspring/decimal"
)

type Config struct {
	conf.Version
	Args    conf.Args
	Web     Web
	DB      DB
	Session Session
	Cookies Cookies
	Auth    Auth
	Pricing Pricing
	Catalog Catalog
	Cors    Cors
}

type Web struct {
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
	Address         string        `conf:"default:0.0.0.0:8000"`
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:storefront"`
	MaxIdleConns int    `conf:"default:2"`
	MaxOpenConns int    `conf:"default:0"`
	DisableTLS   bool   `conf:"default:true"`
	AutoMigrate  bool   `conf:"default:false"`
}

type Session struct {
	Lifetime  time.Duration `conf:"default:720h"`
	Store     string        `conf:"default:postgres,help:one of postgres redis memory"`
	RedisAddr string        `conf:"default:localhost:6379"`
	Secure    bool          `conf:"default:false"`
}

type Cookies struct {
	Cart     string `conf:"default:sessionCartId"`
	Wishlist string `conf:"default:sessionWishlistId"`
}

type Auth struct {
	SignInPath     string        `conf:"default:/sign-in"`
	LoginBurst     int           `conf:"default:5"`
	LoginInterval  time.Duration `conf:"default:12s"`
	LoginExpiryMin int           `conf:"default:30"`
}

type Pricing struct {
	TaxRate               string `conf:"default:0.15"`
	ShippingPrice         string `conf:"default:10"`
	FreeShippingThreshold string `conf:"default:100"`
}

// Decimals converts the configured amounts. Amounts that fail to parse are
// reported so startup can abort.
func (p Pricing) Decimals() (tax, shipping, threshold decimal.Decimal, err error) {
	if tax, err = decimal.NewFromString(p.TaxRate); err != nil {
		return
	}
	if shipping, err = decimal.NewFromString(p.ShippingPrice); err != nil {
		return
	}
	threshold, err = decimal.NewFromString(p.FreeShippingThreshold)
	return
}

type Catalog struct {
	LatestLimit int `conf:"default:4"`
}

type Cors struct {
	Origin string `conf:"default:*"`
}
