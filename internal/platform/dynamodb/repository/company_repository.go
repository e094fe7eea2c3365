package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	ulid "github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/quillbooks/backend/internal/domain/company"
	commonErrors "github.com/quillbooks/backend/internal/domain/errors"
	"github.com/quillbooks/backend/internal/platform/dynamodb/client"
)

// Single-table layout:
//
//	company record  PK=USER#<ownerId>    SK=COMPANY#<companyId>
//	                GSI1PK=COMPANY#<companyId>  GSI1SK=COMPANY
//	data document   PK=COMPANY#<companyId>  SK=DATA  Rev=<ulid>
//
// Rev changes on every data write; the poll-based watches compare it to
// detect remote changes without diffing the whole document.

// CompanyRepository implements the company.Repository interface
type CompanyRepository struct {
	client       client.Client
	table        string
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(client client.Client, table string, pollInterval time.Duration, logger *zap.Logger) *CompanyRepository {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &CompanyRepository{
		client:       client,
		table:        table,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

type companyItem struct {
	company.Company
	PK     string `json:"PK"`
	SK     string `json:"SK"`
	GSI1PK string `json:"GSI1PK"`
	GSI1SK string `json:"GSI1SK"`
	Type   string `json:"Type"`
}

type dataItem struct {
	company.Data
	PK   string `json:"PK"`
	SK   string `json:"SK"`
	Type string `json:"Type"`
	Rev  string `json:"Rev"`
}

func companyPK(ownerID string) string   { return fmt.Sprintf("USER#%s", ownerID) }
func companySK(companyID string) string { return fmt.Sprintf("COMPANY#%s", companyID) }
func dataPK(companyID string) string    { return fmt.Sprintf("COMPANY#%s", companyID) }

// CreateCompany writes a new company record
func (r *CompanyRepository) CreateCompany(ctx context.Context, c *company.Company) (*company.Company, error) {
	item, err := attributevalue.MarshalMap(companyItem{
		Company: *c,
		PK:      companyPK(c.OwnerID),
		SK:      companySK(c.CompanyID),
		GSI1PK:  companySK(c.CompanyID),
		GSI1SK:  "COMPANY",
		Type:    "company",
	})
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to marshal company", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var condCheckErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckErr) {
			return nil, commonErrors.NewConflictError("company already exists")
		}
		return nil, commonErrors.NewTransportError("failed to create company", err)
	}
	return c, nil
}

// GetCompany retrieves a company record by ID via GSI1
func (r *CompanyRepository) GetCompany(ctx context.Context, companyID string) (*company.Company, error) {
	keyCondition := expression.Key("GSI1PK").Equal(expression.Value(companySK(companyID))).
		And(expression.Key("GSI1SK").Equal(expression.Value("COMPANY")))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String("GSI1"),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, commonErrors.NewTransportError("failed to query company", err)
	}
	if len(result.Items) == 0 {
		return nil, commonErrors.NewNotFoundError("company not found")
	}

	var item companyItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal company", err)
	}
	c := item.Company
	return &c, nil
}

// ListCompanies retrieves all companies owned by a user
func (r *CompanyRepository) ListCompanies(ctx context.Context, userID string) ([]*company.Company, error) {
	keyCondition := expression.Key("PK").Equal(expression.Value(companyPK(userID))).
		And(expression.Key("SK").BeginsWith("COMPANY#"))
	filterExpr := expression.Name("Type").Equal(expression.Value("company"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).WithFilter(filterExpr).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	var companies []*company.Company
	var lastEvaluatedKey map[string]types.AttributeValue
	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(r.table),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		}
		if lastEvaluatedKey != nil {
			input.ExclusiveStartKey = lastEvaluatedKey
		}

		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, commonErrors.NewTransportError("failed to list companies", err)
		}

		var page []companyItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, commonErrors.NewInternalError("failed to unmarshal companies", err)
		}
		for i := range page {
			c := page[i].Company
			companies = append(companies, &c)
		}

		lastEvaluatedKey = result.LastEvaluatedKey
		if len(lastEvaluatedKey) == 0 {
			break
		}
	}
	return companies, nil
}

// UpdateCompanyInfo updates a company's display info and bank links
func (r *CompanyRepository) UpdateCompanyInfo(ctx context.Context, companyID string, req *company.UpdateInfoRequest) (*company.Company, error) {
	existing, err := r.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	update := expression.UpdateBuilder{}
	touched := false
	if req.Name != "" {
		update = update.Set(expression.Name("Name"), expression.Value(req.Name))
		touched = true
	}
	if req.BankAccountIDs != nil {
		update = update.Set(expression.Name("BankAccountIDs"), expression.Value(req.BankAccountIDs))
		touched = true
	}
	if !touched {
		return existing, nil
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: companyPK(existing.OwnerID)},
			"SK": &types.AttributeValueMemberS{Value: companySK(companyID)},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, commonErrors.NewTransportError("failed to update company info", err)
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.BankAccountIDs != nil {
		existing.BankAccountIDs = req.BankAccountIDs
	}
	return existing, nil
}

// TouchLastAccessed records when a company was last opened
func (r *CompanyRepository) TouchLastAccessed(ctx context.Context, companyID string, at time.Time) error {
	existing, err := r.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}

	update := expression.Set(expression.Name("LastAccessedAt"), expression.Value(at))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return commonErrors.NewInternalError("failed to build expression", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: companyPK(existing.OwnerID)},
			"SK": &types.AttributeValueMemberS{Value: companySK(companyID)},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return commonErrors.NewTransportError("failed to touch company", err)
	}
	return nil
}

// GetData retrieves the full data document for a company
func (r *CompanyRepository) GetData(ctx context.Context, companyID string) (company.Data, error) {
	data, _, err := r.getDataWithRev(ctx, companyID)
	return data, err
}

func (r *CompanyRepository) getDataWithRev(ctx context.Context, companyID string) (company.Data, string, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: dataPK(companyID)},
			"SK": &types.AttributeValueMemberS{Value: "DATA"},
		},
	})
	if err != nil {
		return company.Data{}, "", commonErrors.NewTransportError("failed to get company data", err)
	}
	if len(result.Item) == 0 {
		return company.Data{}, "", commonErrors.NewNotFoundError("company data not found")
	}

	var item dataItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return company.Data{}, "", commonErrors.NewInternalError("failed to unmarshal company data", err)
	}
	data := item.Data
	data.CompanyID = companyID
	return data, item.Rev, nil
}

// PutData replaces the full data document for a company
func (r *CompanyRepository) PutData(ctx context.Context, data company.Data) error {
	if data.CompanyID == "" {
		return commonErrors.NewValidationError("company data is missing its company id")
	}

	item, err := attributevalue.MarshalMap(dataItem{
		Data: data,
		PK:   dataPK(data.CompanyID),
		SK:   "DATA",
		Type: "company_data",
		Rev:  ulid.Make().String(),
	})
	if err != nil {
		return commonErrors.NewInternalError("failed to marshal company data", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return commonErrors.NewTransportError("failed to put company data", err)
	}
	return nil
}

// WatchData polls a company's data document and reports revision changes.
// Notifications for one watch are delivered from a single goroutine, so their
// order matches the order changes were observed.
func (r *CompanyRepository) WatchData(ctx context.Context, companyID string, onChange func(company.Data), onError func(error)) (company.CancelFunc, error) {
	watchCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()

		lastRev := ""
		poll := func() {
			data, rev, err := r.getDataWithRev(watchCtx, companyID)
			if err != nil {
				if watchCtx.Err() != nil {
					return
				}
				onError(err)
				return
			}
			if rev == lastRev {
				return
			}
			lastRev = rev
			onChange(data)
		}

		poll()
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				poll()
			}
		}
	}()

	r.logger.Debug("watching company data", zap.String("companyId", companyID))
	return company.CancelFunc(cancel), nil
}

// WatchCompanies polls the set of companies owned by a user.
func (r *CompanyRepository) WatchCompanies(ctx context.Context, userID string, onChange func([]*company.Company), onError func(error)) (company.CancelFunc, error) {
	watchCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()

		var last []*company.Company
		seeded := false
		poll := func() {
			companies, err := r.ListCompanies(watchCtx, userID)
			if err != nil {
				if watchCtx.Err() != nil {
					return
				}
				onError(err)
				return
			}
			if seeded && reflect.DeepEqual(companies, last) {
				return
			}
			seeded = true
			last = companies
			onChange(companies)
		}

		poll()
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				poll()
			}
		}
	}()

	r.logger.Debug("watching companies", zap.String("userId", userID))
	return company.CancelFunc(cancel), nil
}
