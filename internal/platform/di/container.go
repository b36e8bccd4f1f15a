// internal/platform/di/container.go
package di

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/blocto/solana-go-sdk/rpc"
	"google.golang.org/api/option"

	httpin "tokenforge/internal/adapters/in/http"
	dbrepo "tokenforge/internal/adapters/out/db"
	fsrepo "tokenforge/internal/adapters/out/firestore"
	gcsstore "tokenforge/internal/adapters/out/gcs"
	mailadapter "tokenforge/internal/adapters/out/mail"
	"tokenforge/internal/adapters/out/notify"
	tcapp "tokenforge/internal/application/tokenCreation"
	tcdom "tokenforge/internal/domain/tokenCreation"
	"tokenforge/internal/infra/arweave"
	"tokenforge/internal/infra/config"
	"tokenforge/internal/infra/database"
	firestoreinfra "tokenforge/internal/infra/firestore"
	"tokenforge/internal/infra/ipfs"
	"tokenforge/internal/infra/secret"
	solanainfra "tokenforge/internal/infra/solana"
)

// Container は main.go から使う依存オブジェクトの束です。
type Container struct {
	Config *config.Config

	TokenUC       *tcapp.TokenCreationUsecase
	Notifications *notify.Collector
	// Notifier は usecase に渡した通知先（ログ + メール + Notifications）。CLI などはこれに追加して使う。
	Notifier notify.Multi

	firebaseApp *firebase.App
	cleanupFn   []func()
}

// NewContainer は設定を読み込み、外部クライアント → usecase の順に組み立てます。
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return Build(ctx, cfg)
}

// Build wires everything from an already-validated cfg.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg, Notifications: &notify.Collector{}}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	// 1) Secret Manager（必要な場合のみ）
	var secrets *secret.Provider
	if cfg.PayerKeySecret != "" || cfg.PinataJWTSecret != "" {
		p, err := secret.NewProvider(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, fmt.Errorf("di: secret manager: %w", err)
		}
		secrets = p
		c.onClose(func() { _ = p.Close() })
	}

	// 2) Solana（RPC + 署名鍵）
	chain := solanainfra.NewRPCClient(cfg.SolanaRPCURL)
	var src solanainfra.SecretSource
	if secrets != nil {
		src = secrets
	}
	payer, err := solanainfra.LoadKeypair(ctx, src, cfg.PayerKeySecret, cfg.PayerKeyFile)
	if err != nil {
		return nil, fmt.Errorf("di: payer keypair: %w", err)
	}
	wallet := solanainfra.NewKeypairWallet(payer, chain)
	log.Printf("[di] signer=%s rpc=%s cluster=%s", payer.PublicKey.ToBase58(), cfg.SolanaRPCURL, cfg.SolanaCluster)

	// 3) アップロード先
	store, err := c.buildAssetStore(ctx, cfg, secrets)
	if err != nil {
		return nil, err
	}

	// 4) usecase
	fees := tcdom.FeeSchedule{
		Receiver:     cfg.FeeReceiverAddress,
		Base:         cfg.BaseFeeLamports,
		RevokeMint:   cfg.RevokeMintLamports,
		RevokeFreeze: cfg.RevokeFreezeLamports,
	}
	uc := tcapp.NewTokenCreationUsecase(
		tcapp.Config{Fees: fees, Commitment: rpc.CommitmentConfirmed, Cluster: cfg.SolanaCluster},
		tcapp.NewMetadataUploader(store),
		wallet,
		chain,
	)

	// 5) 記録先
	records, err := c.buildRecordRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if records != nil {
		uc.SetRecordRepository(records)
	}

	// 6) 通知（ログ + 任意でメール + リクエスト単位の収集）
	var mailer tcdom.Notifier
	if cfg.MailEnabled() {
		mailer = mailadapter.NewWorkflowMailer(
			mailadapter.NewSendGridClient(cfg.SendGridAPIKey), cfg.MailFrom, cfg.MailTo, cfg.SolanaCluster,
		)
	}
	c.Notifier = notify.NewMulti(notify.LogNotifier{}, mailer, c.Notifications)
	uc.SetNotifier(c.Notifier)

	c.TokenUC = uc
	ok = true
	return c, nil
}

func (c *Container) buildAssetStore(ctx context.Context, cfg *config.Config, secrets *secret.Provider) (tcapp.AssetStore, error) {
	switch cfg.UploadProvider {
	case config.UploadProviderGCS:
		var opts []option.ClientOption
		if f := strings.TrimSpace(cfg.FirestoreCredentialsFile); f != "" {
			opts = append(opts, option.WithCredentialsFile(f))
		}
		gcsClient, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("di: storage.NewClient: %w", err)
		}
		c.onClose(func() { _ = gcsClient.Close() })
		log.Printf("[di] asset store=gcs bucket=%s", cfg.GCSBucket)
		return gcsstore.NewAssetStoreGCS(gcsClient, cfg.GCSBucket), nil

	case config.UploadProviderKubo:
		log.Printf("[di] asset store=kubo api=%s gateway=%s", cfg.IPFSAPIAddr, cfg.IPFSGateway)
		return ipfs.NewKuboUploader(cfg.IPFSAPIAddr, cfg.IPFSGateway), nil

	case config.UploadProviderArweave:
		log.Printf("[di] asset store=arweave base=%s", cfg.ArweaveBaseURL)
		return arweave.NewHTTPUploader(cfg.ArweaveBaseURL, cfg.ArweaveAPIKey), nil

	default:
		jwt := cfg.PinataJWT
		if cfg.PinataJWTSecret != "" {
			v, err := secrets.GetString(ctx, cfg.PinataJWTSecret)
			if err != nil {
				return nil, fmt.Errorf("di: pinata jwt: %w", err)
			}
			jwt = v
		}
		log.Printf("[di] asset store=pinata api=%s gateway=%s", cfg.PinataAPIURL, cfg.IPFSGateway)
		return ipfs.NewPinataUploader(cfg.PinataAPIURL, cfg.IPFSGateway, jwt), nil
	}
}

func (c *Container) buildRecordRepository(ctx context.Context, cfg *config.Config) (tcdom.RecordRepository, error) {
	switch cfg.RecordStore {
	case config.RecordStoreFirestore:
		fs, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			return nil, err
		}
		c.onClose(func() { _ = fs.Close() })
		return fsrepo.NewTokenRecordRepositoryFS(fs.Client), nil

	case config.RecordStorePostgres:
		db, err := database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c.onClose(func() { _ = db.Close() })
		repo := dbrepo.NewTokenRecordRepositoryPG(db.Client)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("di: ensure token_records schema: %w", err)
		}
		return repo, nil

	default:
		log.Printf("[di] record store disabled")
		return nil, nil
	}
}

// RouterDeps は HTTP ルータに渡す依存をまとめます。
// Firebase Auth は FIREBASE_PROJECT_ID が設定されている場合のみ有効（失敗時は起動エラー）。
func (c *Container) RouterDeps(ctx context.Context) (httpin.RouterDeps, error) {
	deps := httpin.RouterDeps{
		TokenService:   c.TokenUC,
		Notifications:  c.Notifications,
		AllowedOrigins: c.Config.CORSAllowedOrigins,
	}
	if !c.Config.AuthEnabled() {
		return deps, nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: c.Config.FirebaseProjectID})
	if err != nil {
		return deps, fmt.Errorf("di: firebase app init: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return deps, fmt.Errorf("di: firebase auth init: %w", err)
	}
	c.firebaseApp = app
	deps.FirebaseAuth = authClient
	log.Printf("[di] Firebase Auth initialized project=%s", c.Config.FirebaseProjectID)
	return deps, nil
}

func (c *Container) onClose(fn func()) {
	c.cleanupFn = append(c.cleanupFn, fn)
}

// Close は逆順に後片付けします。
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.cleanupFn) - 1; i >= 0; i-- {
		c.cleanupFn[i]()
	}
	c.cleanupFn = nil
}
