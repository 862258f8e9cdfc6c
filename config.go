/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	chatBurst      int
	chatRate       float64
	decoyEndpoint  string
	decoyKey       string
	decoyModel     string
	hostAddr       string
	hostName       string
	lang           string
	minPlayers     int
	peerName       string
	playerTimeout  time.Duration
	port           int
	prefix         string
	prefsPath      string
	profile        bool
	room           string
	secure         bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func defaultConfig() *Config {
	return &Config{
		bind:           "0.0.0.0",
		chatBurst:      10,
		chatRate:       5,
		decoyEndpoint:  "https://api.openai.com/v1/chat/completions",
		decoyModel:     "gpt-4o-mini",
		hostName:       "Me (Host)",
		minPlayers:     3,
		playerTimeout:  30 * time.Second,
		port:           8080,
		sessionTimeout: 60 * time.Minute,
	}
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.room != "" {
		code, err := normalizeRoomCode(c.room)
		if err != nil {
			return err
		}
		c.room = code
	}
	if c.minPlayers < 2 {
		return fmt.Errorf("invalid minimum player count (must be at least 2): %d", c.minPlayers)
	}
	if c.chatRate <= 0 || c.chatBurst < 1 {
		return fmt.Errorf("invalid chat limit (rate must be positive, burst at least 1): %v/%d", c.chatRate, c.chatBurst)
	}
	if c.playerTimeout < 0 || c.sessionTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.lang != "" {
		if _, err := parseLanguage(c.lang); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "impostor.toml"
	}
	return filepath.Join(dir, "impostor", "prefs.toml")
}

// loadDotEnv loads variables from a .env file if present. Variables that
// are already set are not overwritten.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// bindFlags lets every flag in fs be set through IMPOSTOR_<FLAG_NAME>.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	envFile := os.Getenv("IMPOSTOR_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := loadDotEnv(envFile); err != nil {
		errorf(err, "CONFIG: Unable to load %s", envFile)
	}

	v := viper.New()
	v.SetEnvPrefix("IMPOSTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "impostor",
		Short:         "A party word game: find the impostor who does not know the secret word.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVar(&cfg.decoyEndpoint, "decoy-endpoint", cfg.decoyEndpoint, "chat completions endpoint used for impostor decoy words (env: IMPOSTOR_DECOY_ENDPOINT)")
	pfs.StringVar(&cfg.decoyKey, "decoy-key", "", "api key for the decoy word service; decoys are disabled when empty (env: IMPOSTOR_DECOY_KEY)")
	pfs.StringVar(&cfg.decoyModel, "decoy-model", cfg.decoyModel, "model requested from the decoy word service (env: IMPOSTOR_DECOY_MODEL)")
	pfs.StringVar(&cfg.lang, "lang", "", "language for categories and words (en, pt, es); saved as the new preference (env: IMPOSTOR_LANG)")
	pfs.StringVar(&cfg.prefsPath, "prefs", defaultPrefsPath(), "path to the preferences file (env: IMPOSTOR_PREFS)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: IMPOSTOR_VERBOSE)")
	bindFlags(v, pfs)

	cmd.Flags().BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: IMPOSTOR_VERSION)")

	cmd.AddCommand(newHostCmd(v, cfg), newJoinCmd(v, cfg), newLocalCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("impostor v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newHostCmd(v *viper.Viper, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Create an online room and relay it to joining players.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return runHost(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", cfg.bind, "address to bind to (env: IMPOSTOR_BIND)")
	fs.IntVar(&cfg.chatBurst, "chat-burst", cfg.chatBurst, "chat messages a player may send in a burst (env: IMPOSTOR_CHAT_BURST)")
	fs.Float64Var(&cfg.chatRate, "chat-rate", cfg.chatRate, "sustained chat messages per second allowed per player (env: IMPOSTOR_CHAT_RATE)")
	fs.IntVar(&cfg.minPlayers, "min-players", cfg.minPlayers, "players required before a round can start (env: IMPOSTOR_MIN_PLAYERS)")
	fs.StringVarP(&cfg.hostName, "name", "n", cfg.hostName, "your display name (env: IMPOSTOR_NAME)")
	fs.DurationVar(&cfg.playerTimeout, "player-timeout", cfg.playerTimeout, "time before a disconnected lobby player is removed (env: IMPOSTOR_PLAYER_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", cfg.port, "port to listen on (env: IMPOSTOR_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: IMPOSTOR_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: IMPOSTOR_PROFILE)")
	fs.StringVarP(&cfg.room, "room", "r", "", "room code to use instead of a random one (env: IMPOSTOR_ROOM)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", cfg.sessionTimeout, "time before an idle room is closed (env: IMPOSTOR_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: IMPOSTOR_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: IMPOSTOR_TLS_KEY)")
	bindFlags(v, fs)

	return cmd
}

func newJoinCmd(v *viper.Viper, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join ROOM",
		Short: "Join an online room hosted by another player.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			if strings.TrimSpace(cfg.peerName) == "" {
				return ErrEmptyName
			}
			return runJoin(cmd.Context(), cfg, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.hostAddr, "host", "H", "localhost:8080", "address of the hosting player (env: IMPOSTOR_HOST)")
	fs.StringVarP(&cfg.peerName, "name", "n", "", "your display name (env: IMPOSTOR_NAME)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path prefix the host is served under (env: IMPOSTOR_PREFIX)")
	fs.BoolVar(&cfg.secure, "secure", false, "dial the host over wss (env: IMPOSTOR_SECURE)")
	bindFlags(v, fs)

	return cmd
}

func newLocalCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "local",
		Short: "Play on a single device, passing it around for the reveal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return runLocal(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
