package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Internal payment method values stored on payments.
const (
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodEWallet      = "e_wallet"
	PaymentMethodCreditCard   = "credit_card"
	PaymentMethodQRIS         = "qris"
	PaymentMethodRetailOutlet = "retail_outlet"
	PaymentMethodDirectDebit  = "direct_debit"
	PaymentMethodOnline       = "online"
)

// PaymentMethodsConfig maps processor payment method codes to internal values.
type PaymentMethodsConfig struct {
	Default string            `mapstructure:"default"`
	Mapping map[string]string `mapstructure:"mapping"`
}

func DefaultPaymentMethodsConfig() PaymentMethodsConfig {
	return PaymentMethodsConfig{
		Default: PaymentMethodOnline,
		Mapping: map[string]string{
			"bank_transfer":   PaymentMethodBankTransfer,
			"virtual_account": PaymentMethodBankTransfer,
			"ewallet":         PaymentMethodEWallet,
			"e_wallet":        PaymentMethodEWallet,
			"credit_card":     PaymentMethodCreditCard,
			"card":            PaymentMethodCreditCard,
			"qr_code":         PaymentMethodQRIS,
			"qris":            PaymentMethodQRIS,
			"retail_outlet":   PaymentMethodRetailOutlet,
			"direct_debit":    PaymentMethodDirectDebit,
		},
	}
}

type PaymentMethodsHolder struct {
	current atomic.Value // holds PaymentMethodsConfig
}

// NewPaymentMethodsHolder loads payment_methods.yml and watches it for changes.
// Compiled-in defaults apply to any key the file leaves out.
func NewPaymentMethodsHolder() (*PaymentMethodsHolder, error) {
	return loadPaymentMethodsHolder("/etc/bukukas", ".")
}

func loadPaymentMethodsHolder(paths ...string) (*PaymentMethodsHolder, error) {
	v := viper.New()

	v.SetConfigName("payment_methods")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("BUKUKAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPaymentMethodsConfig()
	v.SetDefault("paymentMethods.default", defaults.Default)
	v.SetDefault("paymentMethods.mapping", defaults.Mapping)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	cfg, err := readPaymentMethods(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticPaymentMethodsHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := readPaymentMethods(v)
		if err != nil {
			log.Printf("[payment-methods] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[payment-methods] reloaded from %s", e.Name)
	})

	return holder, nil
}

// readPaymentMethods reads each leaf key so defaults fill whatever the file omits.
func readPaymentMethods(v *viper.Viper) (PaymentMethodsConfig, error) {
	cfg := normalizePaymentMethods(PaymentMethodsConfig{
		Default: v.GetString("paymentMethods.default"),
		Mapping: v.GetStringMapString("paymentMethods.mapping"),
	})
	if err := validatePaymentMethods(cfg); err != nil {
		return PaymentMethodsConfig{}, err
	}
	return cfg, nil
}

// NewStaticPaymentMethodsHolder wraps a fixed mapping.
func NewStaticPaymentMethodsHolder(cfg PaymentMethodsConfig) *PaymentMethodsHolder {
	holder := &PaymentMethodsHolder{}
	holder.current.Store(normalizePaymentMethods(cfg))
	return holder
}

func (h *PaymentMethodsHolder) Get() PaymentMethodsConfig {
	if h == nil {
		return normalizePaymentMethods(DefaultPaymentMethodsConfig())
	}
	return h.current.Load().(PaymentMethodsConfig)
}

// Resolve returns the internal method for the first processor code that is mapped,
// falling back to the configured default.
func (h *PaymentMethodsHolder) Resolve(codes ...string) string {
	cfg := h.Get()
	for _, code := range codes {
		key := normalizeMethodKey(code)
		if key == "" {
			continue
		}
		if method, ok := cfg.Mapping[key]; ok {
			return method
		}
	}
	return cfg.Default
}

func normalizePaymentMethods(cfg PaymentMethodsConfig) PaymentMethodsConfig {
	out := PaymentMethodsConfig{
		Default: strings.ToLower(strings.TrimSpace(cfg.Default)),
		Mapping: make(map[string]string, len(cfg.Mapping)),
	}
	for key, value := range cfg.Mapping {
		k := normalizeMethodKey(key)
		val := strings.ToLower(strings.TrimSpace(value))
		if k == "" || val == "" {
			continue
		}
		out.Mapping[k] = val
	}
	return out
}

func normalizeMethodKey(code string) string {
	key := strings.ToLower(strings.TrimSpace(code))
	key = strings.ReplaceAll(key, "-", "_")
	return strings.ReplaceAll(key, " ", "_")
}

func validatePaymentMethods(cfg PaymentMethodsConfig) error {
	if cfg.Default == "" {
		return errors.New("paymentMethods.default cannot be empty")
	}
	return nil
}
