/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storage/leveldb"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-issuer-go/pkg/common/metrics"
	"github.com/hyperledger/aries-issuer-go/pkg/connection"
	"github.com/hyperledger/aries-issuer-go/pkg/controller"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/protocol/issuecredential"
	"github.com/hyperledger/aries-issuer-go/pkg/engine/jws"
	ariesctx "github.com/hyperledger/aries-issuer-go/pkg/framework/context"
	"github.com/hyperledger/aries-issuer-go/pkg/store/exchange/redis"
)

const (
	// api host flag.
	agentHostFlagName      = "api-host"
	agentHostEnvKey        = "ISSUER_API_HOST"
	agentHostFlagShorthand = "a"
	agentHostFlagUsage     = "Host Name:Port." +
		" Alternatively, this can be set with the following environment variable: " + agentHostEnvKey

	// api token flag.
	agentTokenFlagName      = "api-token"
	agentTokenEnvKey        = "ISSUER_API_TOKEN" // nolint:gosec
	agentTokenFlagShorthand = "t"
	agentTokenFlagUsage     = "Check for bearer token in the authorization header (optional)." +
		" Alternatively, this can be set with the following environment variable: " + agentTokenEnvKey

	databaseTypeFlagName      = "database-type"
	databaseTypeEnvKey        = "ISSUER_DATABASE_TYPE"
	databaseTypeFlagShorthand = "q"
	databaseTypeFlagUsage     = "The type of database used to persist credential exchanges. " +
		"Supported options: mem, leveldb, redis. " +
		" Alternatively, this can be set with the following environment variable: " + databaseTypeEnvKey

	databaseURLFlagName      = "database-url"
	databaseURLEnvKey        = "ISSUER_DATABASE_URL"
	databaseURLFlagShorthand = "v"
	databaseURLFlagUsage     = "The URL of the database. Not needed if using memstore." +
		" For leveldb this is the database directory, for redis a redis:// URL." +
		" Alternatively, this can be set with the following environment variable: " + databaseURLEnvKey

	databasePrefixFlagName      = "database-prefix"
	databasePrefixEnvKey        = "ISSUER_DATABASE_PREFIX"
	databasePrefixFlagShorthand = "u"
	databasePrefixFlagUsage     = "An optional prefix for the keys of the exchange records (redis only). " +
		" Alternatively, this can be set with the following environment variable: " + databasePrefixEnvKey

	databaseTimeoutFlagName  = "database-timeout"
	databaseTimeoutFlagUsage = "Total time in seconds to wait until the db is available before giving up." +
		" Default: " + databaseTimeoutDefault + " seconds." +
		" Alternatively, this can be set with the following environment variable: " + databaseTimeoutEnvKey
	databaseTimeoutEnvKey  = "ISSUER_DATABASE_TIMEOUT"
	databaseTimeoutDefault = "30"

	// webhook url flag.
	agentWebhookFlagName      = "webhook-url"
	agentWebhookEnvKey        = "ISSUER_WEBHOOK_URL"
	agentWebhookFlagShorthand = "w"
	agentWebhookFlagUsage     = "URL to send notifications to." +
		" This flag can be repeated, allowing for multiple listeners." +
		" Alternatively, this can be set with the following environment variable (in CSV format): " + agentWebhookEnvKey

	// log level.
	agentLogLevelFlagName  = "log-level"
	agentLogLevelEnvKey    = "ISSUER_LOG_LEVEL"
	agentLogLevelFlagUsage = "Log level." +
		" Possible values [INFO] [DEBUG] [ERROR] [WARNING] [CRITICAL] . Defaults to INFO if not set." +
		" Alternatively, this can be set with the following environment variable: " + agentLogLevelEnvKey

	// log format.
	agentLogFormatFlagName  = "log-format"
	agentLogFormatEnvKey    = "ISSUER_LOG_FORMAT"
	agentLogFormatFlagUsage = "Log format. Possible values [text] [json]. Defaults to text if not set." +
		" Alternatively, this can be set with the following environment variable: " + agentLogFormatEnvKey

	agentTLSCertFileFlagName      = "tls-cert-file"
	agentTLSCertFileEnvKey        = "TLS_CERT_FILE"
	agentTLSCertFileFlagShorthand = "c"
	agentTLSCertFileFlagUsage     = "tls certificate file." +
		" Alternatively, this can be set with the following environment variable: " + agentTLSCertFileEnvKey

	agentTLSKeyFileFlagName      = "tls-key-file"
	agentTLSKeyFileEnvKey        = "TLS_KEY_FILE"
	agentTLSKeyFileFlagShorthand = "k"
	agentTLSKeyFileFlagUsage     = "tls key file." +
		" Alternatively, this can be set with the following environment variable: " + agentTLSKeyFileEnvKey

	// credential offer flags.
	offerTTLFlagName  = "offer-ttl"
	offerTTLEnvKey    = "ISSUER_OFFER_TTL"
	offerTTLFlagUsage = "How long a credential offer can be answered, as a duration (e.g. 10m)." +
		" Alternatively, this can be set with the following environment variable: " + offerTTLEnvKey

	signingSeedFlagName  = "signing-seed"
	signingSeedEnvKey    = "ISSUER_SIGNING_SEED" // nolint:gosec
	signingSeedFlagUsage = "Hex encoded 32 byte seed of the issuer signing key. A random key is used if not set." +
		" Required with a persistent database type, stored offers can only be answered with the key that signed them." +
		" Alternatively, this can be set with the following environment variable: " + signingSeedEnvKey

	commandTimeoutFlagName  = "command-timeout"
	commandTimeoutEnvKey    = "ISSUER_COMMAND_TIMEOUT"
	commandTimeoutFlagUsage = "How long a REST call waits for an exchange operation, as a duration (e.g. 30s)." +
		" Alternatively, this can be set with the following environment variable: " + commandTimeoutEnvKey

	databaseTypeMemOption     = "mem"
	databaseTypeLevelDBOption = "leveldb"
	databaseTypeRedisOption   = "redis"

	metricsPath      = "/metrics"
	stateEventBuffer = 100
)

var (
	errMissingHost = errors.New("host not provided")
	errMissingSeed = errors.New("signing-seed must be set with a persistent database type")
)

var logger = log.New("aries-issuer/issuer-agent-rest")

type agentParameters struct {
	server         server
	host           string
	token          string
	dbParam        *dbParam
	webhookURLs    []string
	tlsCertFile    string
	tlsKeyFile     string
	offerTTL       time.Duration
	signingSeed    []byte
	commandTimeout time.Duration
}

type dbParam struct {
	dbType  string
	url     string
	prefix  string
	timeout uint64
}

// nolint:gochecknoglobals
var supportedStorageProviders = map[string]func(url, prefix string) (storage.Provider, error){
	databaseTypeMemOption: func(_, _ string) (storage.Provider, error) { // nolint:unparam
		return mem.NewProvider(), nil
	},
	databaseTypeLevelDBOption: func(path, _ string) (storage.Provider, error) { // nolint:unparam
		return leveldb.NewProvider(path), nil
	},
}

type server interface {
	ListenAndServe(host string, router http.Handler, certFile, keyFile string) error
}

// HTTPServer represents an actual server implementation.
type HTTPServer struct{}

// ListenAndServe starts the server using the standard Go HTTP server implementation.
func (s *HTTPServer) ListenAndServe(host string, router http.Handler, certFile, keyFile string) error {
	if certFile != "" && keyFile != "" {
		return http.ListenAndServeTLS(host, certFile, keyFile, router)
	}

	return http.ListenAndServe(host, router) // nolint:gosec
}

// Cmd returns the Cobra start command.
func Cmd(server server) (*cobra.Command, error) {
	startCmd := createStartCMD(server)

	createFlags(startCmd)

	return startCmd, nil
}

func createStartCMD(server server) *cobra.Command { //nolint: funlen
	return &cobra.Command{
		Use:   "start",
		Short: "Start an issuer agent",
		Long:  `Start an issuer agent exposing the credential exchange controller API`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logFormat, err := getUserSetVar(cmd, agentLogFormatFlagName, agentLogFormatEnvKey, true)
			if err != nil {
				return err
			}

			if err = initLogger(logFormat); err != nil {
				return err
			}

			logLevel, err := getUserSetVar(cmd, agentLogLevelFlagName, agentLogLevelEnvKey, true)
			if err != nil {
				return err
			}

			err = setLogLevel(logLevel)
			if err != nil {
				return err
			}

			host, err := getUserSetVar(cmd, agentHostFlagName, agentHostEnvKey, false)
			if err != nil {
				return err
			}

			token, err := getUserSetVar(cmd, agentTokenFlagName, agentTokenEnvKey, true)
			if err != nil {
				return err
			}

			dbParam, err := getDBParam(cmd)
			if err != nil {
				return err
			}

			webhookURLs, err := getUserSetVars(cmd, agentWebhookFlagName, agentWebhookEnvKey, true)
			if err != nil {
				return err
			}

			tlsCertFile, err := getUserSetVar(cmd, agentTLSCertFileFlagName, agentTLSCertFileEnvKey, true)
			if err != nil {
				return err
			}

			tlsKeyFile, err := getUserSetVar(cmd, agentTLSKeyFileFlagName, agentTLSKeyFileEnvKey, true)
			if err != nil {
				return err
			}

			offerTTL, err := getDuration(cmd, offerTTLFlagName, offerTTLEnvKey)
			if err != nil {
				return err
			}

			commandTimeout, err := getDuration(cmd, commandTimeoutFlagName, commandTimeoutEnvKey)
			if err != nil {
				return err
			}

			seed, err := getSigningSeed(cmd)
			if err != nil {
				return err
			}

			parameters := &agentParameters{
				server:         server,
				host:           host,
				token:          token,
				dbParam:        dbParam,
				webhookURLs:    webhookURLs,
				tlsCertFile:    tlsCertFile,
				tlsKeyFile:     tlsKeyFile,
				offerTTL:       offerTTL,
				signingSeed:    seed,
				commandTimeout: commandTimeout,
			}

			return startAgent(parameters)
		},
	}
}

func getDBParam(cmd *cobra.Command) (*dbParam, error) {
	dbParam := &dbParam{}

	var err error

	dbParam.dbType, err = getUserSetVar(cmd, databaseTypeFlagName, databaseTypeEnvKey, false)
	if err != nil {
		return nil, err
	}

	dbParam.url, err = getUserSetVar(cmd, databaseURLFlagName, databaseURLEnvKey, true)
	if err != nil {
		return nil, err
	}

	dbParam.prefix, err = getUserSetVar(cmd, databasePrefixFlagName, databasePrefixEnvKey, true)
	if err != nil {
		return nil, err
	}

	dbTimeout, err := getUserSetVar(cmd, databaseTimeoutFlagName, databaseTimeoutEnvKey, true)
	if err != nil {
		return nil, err
	}

	if dbTimeout == "" || dbTimeout == "0" {
		dbTimeout = databaseTimeoutDefault
	}

	t, err := strconv.Atoi(dbTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse db timeout %s: %w", dbTimeout, err)
	}

	dbParam.timeout = uint64(t)

	return dbParam, nil
}

func getDuration(cmd *cobra.Command, flagName, envKey string) (time.Duration, error) {
	v, err := getUserSetVar(cmd, flagName, envKey, true)
	if err != nil {
		return 0, err
	}

	if v == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s %s: %w", flagName, v, err)
	}

	return d, nil
}

func getSigningSeed(cmd *cobra.Command) ([]byte, error) {
	v, err := getUserSetVar(cmd, signingSeedFlagName, signingSeedEnvKey, true)
	if err != nil {
		return nil, err
	}

	if v == "" {
		return nil, nil
	}

	seed, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", signingSeedFlagName, err)
	}

	return seed, nil
}

func createFlags(startCmd *cobra.Command) {
	// agent host flag
	startCmd.Flags().StringP(agentHostFlagName, agentHostFlagShorthand, "", agentHostFlagUsage)

	// agent token flag
	startCmd.Flags().StringP(agentTokenFlagName, agentTokenFlagShorthand, "", agentTokenFlagUsage)

	// db type
	startCmd.Flags().StringP(databaseTypeFlagName, databaseTypeFlagShorthand, "", databaseTypeFlagUsage)

	// db url
	startCmd.Flags().StringP(databaseURLFlagName, databaseURLFlagShorthand, "", databaseURLFlagUsage)

	// db prefix
	startCmd.Flags().StringP(databasePrefixFlagName, databasePrefixFlagShorthand, "", databasePrefixFlagUsage)

	// db timeout
	startCmd.Flags().StringP(databaseTimeoutFlagName, "", "", databaseTimeoutFlagUsage)

	// webhook url flag
	startCmd.Flags().StringSliceP(agentWebhookFlagName, agentWebhookFlagShorthand, []string{}, agentWebhookFlagUsage)

	// log level
	startCmd.Flags().StringP(agentLogLevelFlagName, "", "", agentLogLevelFlagUsage)

	// log format
	startCmd.Flags().StringP(agentLogFormatFlagName, "", "", agentLogFormatFlagUsage)

	// tls cert file
	startCmd.Flags().StringP(agentTLSCertFileFlagName,
		agentTLSCertFileFlagShorthand, "", agentTLSCertFileFlagUsage)

	// tls key file
	startCmd.Flags().StringP(agentTLSKeyFileFlagName,
		agentTLSKeyFileFlagShorthand, "", agentTLSKeyFileFlagUsage)

	startCmd.Flags().StringP(offerTTLFlagName, "", "", offerTTLFlagUsage)
	startCmd.Flags().StringP(signingSeedFlagName, "", "", signingSeedFlagUsage)
	startCmd.Flags().StringP(commandTimeoutFlagName, "", "", commandTimeoutFlagUsage)
}

func getUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	if isOptional || isSet {
		return value, nil
	}

	return "", errors.New("Neither " + flagName + " (command line flag) nor " + envKey +
		" (environment variable) have been set.")
}

func getUserSetVars(cmd *cobra.Command, flagName, envKey string, isOptional bool) ([]string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetStringSlice(flagName)
		if err != nil {
			return nil, fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	var values []string

	if isSet {
		values = strings.Split(value, ",")
	}

	if isOptional || isSet {
		return values, nil
	}

	return nil, fmt.Errorf(" %s not set. "+
		"It must be set via either command line or environment variable", flagName)
}

func setLogLevel(logLevel string) error {
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("failed to parse log level '%s' : %w", logLevel, err)
		}

		log.SetLevel("", level)

		logger.Infof("logger level set to %s", logLevel)
	}

	return nil
}

func validateAuthorizationBearerToken(w http.ResponseWriter, r *http.Request, token string) bool {
	actHdr := r.Header.Get("Authorization")
	expHdr := "Bearer " + token

	if subtle.ConstantTimeCompare([]byte(actHdr), []byte(expHdr)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorised.\n")) // nolint:gosec,errcheck

		return false
	}

	return true
}

func authorizationMiddleware(token string) mux.MiddlewareFunc {
	middleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validateAuthorizationBearerToken(w, r, token) {
				next.ServeHTTP(w, r)
			}
		})
	}

	return middleware
}

func isPersistent(param *dbParam) bool {
	return param.dbType == databaseTypeLevelDBOption || param.dbType == databaseTypeRedisOption
}

func startAgent(parameters *agentParameters) error {
	if parameters.host == "" {
		return errMissingHost
	}

	if isPersistent(parameters.dbParam) && len(parameters.signingSeed) == 0 {
		return errMissingSeed
	}

	router, stop, err := createRouter(parameters)
	if err != nil {
		return err
	}

	defer stop()

	logger.Infof("Starting issuer agent rest on host [%s]", parameters.host)
	// start server on given port and serve using given handlers
	handler := cors.New(
		cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodHead},
			AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		},
	).Handler(router)

	err = parameters.server.ListenAndServe(parameters.host, handler, parameters.tlsCertFile, parameters.tlsKeyFile)
	if err != nil {
		return fmt.Errorf("failed to start issuer agent rest on port [%s], cause:  %w", parameters.host, err)
	}

	return nil
}

// createRouter builds the agent and its routes. stop ends the background workers and closes the stores.
func createRouter(parameters *agentParameters) (*mux.Router, func(), error) {
	connections := connection.NewRegistry()

	svc, err := createService(parameters, connections)
	if err != nil {
		return nil, nil, err
	}

	ctx, closeStore, err := createContext(parameters, svc, connections)
	if err != nil {
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()

	m, err := metrics.New(registry, func() float64 { return float64(svc.Len()) })
	if err != nil {
		closeStore()

		return nil, nil, fmt.Errorf("failed to register metrics : %w", err)
	}

	states := make(chan service.StateMsg, stateEventBuffer)
	if err = svc.RegisterMsgEvent(states); err != nil {
		closeStore()

		return nil, nil, fmt.Errorf("failed to register state events : %w", err)
	}

	watchCtx, cancel := context.WithCancel(context.Background())

	go m.Watch(watchCtx, states)

	stop := func() {
		cancel()

		if e := svc.UnregisterMsgEvent(states); e != nil {
			logger.Warnf("failed to unregister state events : %s", e)
		}

		closeStore()
	}

	opts := []controller.Opt{controller.WithWebhookURLs(parameters.webhookURLs...)}
	if parameters.commandTimeout > 0 {
		opts = append(opts, controller.WithCommandTimeout(parameters.commandTimeout))
	}

	// get all HTTP REST API handlers available for controller API
	handlers, err := controller.GetRESTHandlers(ctx, opts...)
	if err != nil {
		stop()

		return nil, nil, fmt.Errorf("failed to start issuer agent rest on port [%s], failed to get rest service api :  %w",
			parameters.host, err)
	}

	router := mux.NewRouter()

	if parameters.token != "" {
		router.Use(authorizationMiddleware(parameters.token))
	}

	router.Use(m.Middleware)

	router.Handle(metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	for _, handler := range handlers {
		router.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())
	}

	return router, stop, nil
}

func createService(parameters *agentParameters, resolver connection.Resolver) (*issuecredential.Service, error) {
	var engineOpts []jws.Opt

	if parameters.offerTTL > 0 {
		engineOpts = append(engineOpts, jws.WithOfferTTL(parameters.offerTTL))
	}

	if len(parameters.signingSeed) > 0 {
		engineOpts = append(engineOpts, jws.WithSeed(parameters.signingSeed))
	}

	engine, err := jws.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential engine : %w", err)
	}

	// deserialized exchanges rebind to connections opened through the controller
	svc, err := issuecredential.New(issuecredential.WithEngine(engine), issuecredential.WithResolver(resolver))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize issue-credential service : %w", err)
	}

	return svc, nil
}

// createContext wires the service, the connection registry and the exchange store into a context.
func createContext(parameters *agentParameters, svc *issuecredential.Service,
	connections *connection.Registry) (*ariesctx.Provider, func(), error) {
	opts := []ariesctx.ProviderOption{
		ariesctx.WithProtocolServices(svc),
		ariesctx.WithConnectionRegistry(connections),
	}
	var closeStore func()

	if parameters.dbParam.dbType == databaseTypeRedisOption {
		store, err := createRedisStore(parameters.dbParam)
		if err != nil {
			return nil, nil, err
		}

		opts = append(opts, ariesctx.WithExchangeStore(store))
		closeStore = func() {
			if e := store.Close(); e != nil {
				logger.Warnf("failed to close redis store : %s", e)
			}
		}
	} else {
		storePro, err := createStoreProviders(parameters.dbParam)
		if err != nil {
			return nil, nil, err
		}

		opts = append(opts, ariesctx.WithStorageProvider(storePro))
		closeStore = func() {
			if e := storePro.Close(); e != nil {
				logger.Warnf("failed to close storage provider : %s", e)
			}
		}
	}

	ctx, err := ariesctx.New(opts...)
	if err != nil {
		closeStore()

		return nil, nil, fmt.Errorf("failed to initialize context : %w", err)
	}

	return ctx, closeStore, nil
}

func createStoreProviders(param *dbParam) (storage.Provider, error) {
	provider, supported := supportedStorageProviders[param.dbType]
	if !supported {
		return nil, fmt.Errorf("database type not set to a valid type." +
			" run start --help to see the available options")
	}

	var store storage.Provider

	err := retry(param, func() error {
		var openErr error
		store, openErr = provider(param.url, param.prefix)

		return openErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage at %s : %w", param.url, err)
	}

	return store, nil
}

func createRedisStore(param *dbParam) (*redis.Store, error) {
	var opts []redis.Option
	if param.prefix != "" {
		opts = append(opts, redis.WithPrefix(param.prefix))
	}

	store, err := redis.New(param.url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis store : %w", err)
	}

	err = retry(param, func() error {
		return store.Ping(context.Background())
	})
	if err != nil {
		store.Close() // nolint:errcheck,gosec

		return nil, fmt.Errorf("failed to connect to storage at %s : %w", param.url, err)
	}

	return store, nil
}

func retry(param *dbParam, op func() error) error {
	return backoff.RetryNotify(
		op,
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), param.timeout),
		func(retryErr error, t time.Duration) {
			logger.Warnf(
				"failed to connect to storage, will sleep for %s before trying again : %s\n",
				t, retryErr)
		},
	)
}
