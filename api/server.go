package api

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/jeanbottein/zvote/api/controllers"
	"github.com/jeanbottein/zvote/api/transport"
	"github.com/jeanbottein/zvote/logging"
	"github.com/jeanbottein/zvote/storage"
	"github.com/jeanbottein/zvote/voting"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

func (s *Server) Start() {
	r := transport.NewRouter(gin.DebugMode)

	votes, options, judgments, approvals, summaries := s.buildStorage()

	locks := voting.NewVoteLocks()
	aggregator := voting.NewMajorityAggregator(options, judgments, summaries)
	approvalEngine := voting.NewApprovalEngine(votes, options, approvals, locks, s.config.MaxOptions)
	judgmentEngine := voting.NewJudgmentEngine(votes, options, judgments, aggregator, locks)

	features := controllers.Features{
		MaxOptions:       s.config.MaxOptions,
		PublicVotes:      s.config.PublicVotes,
		UnlistedVotes:    s.config.UnlistedVotes,
		PrivateVotes:     s.config.PrivateVotes,
		ApprovalVoting:   s.config.ApprovalVoting,
		MajorityJudgment: s.config.MajorityJudgment,
		LiveBallot:       s.config.LiveBallot,
		EnvelopeBallot:   s.config.EnvelopeBallot,
	}

	//Register controllers
	votesController := controllers.NewVotesController(votes, options, judgments, approvals, summaries, features)
	votesController.RegisterRoutes(r)
	approvalController := controllers.NewApprovalController(approvalEngine)
	approvalController.RegisterRoutes(r)
	judgmentController := controllers.NewJudgmentController(judgmentEngine)
	judgmentController.RegisterRoutes(r)
	metaController := controllers.NewMetaController(features)
	metaController.RegisterRoutes(r)

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		startLocal(r, s.config.Port)
	} else {
		startLambda(r)
	}
}

func (s *Server) buildStorage() (storage.VoteStorage, storage.VoteOptionStorage, storage.JudgmentStorage, storage.ApprovalStorage, storage.SummaryStorage) {
	if s.config.UseMemory {
		logging.Log.Info("Using in-memory storage")
		db := storage.NewMemoryDB()
		return &storage.MemoryVoteStorage{DB: db},
			&storage.MemoryVoteOptionStorage{DB: db},
			&storage.MemoryJudgmentStorage{DB: db},
			&storage.MemoryApprovalStorage{DB: db},
			&storage.MemorySummaryStorage{DB: db}
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logging.Log.Errorf("failed to load AWS config: %v", err)
		panic("failed to load AWS config")
	}
	dynamoClient := dynamodb.NewFromConfig(cfg)

	return &storage.DynamoVoteStorage{Client: dynamoClient, TableName: s.config.TableNameVotes},
		&storage.DynamoVoteOptionStorage{Client: dynamoClient, TableName: s.config.TableNameOptions},
		&storage.DynamoJudgmentStorage{Client: dynamoClient, TableName: s.config.TableNameJudgments},
		&storage.DynamoApprovalStorage{Client: dynamoClient, TableName: s.config.TableNameApprovals},
		&storage.DynamoSummaryStorage{Client: dynamoClient, TableName: s.config.TableNameSummaries}
}

// StartLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// StartLocal starts a normal HTTP server on the configured port
func startLocal(engine *gin.Engine, port int) {
	logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))

	if err := engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
