package repository

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quillbooks/backend/internal/domain/company"
	commonErrors "github.com/quillbooks/backend/internal/domain/errors"
	"github.com/quillbooks/backend/internal/platform/dynamodb/client"
)

// TestClient is an in-memory stand-in for the DynamoDB client. It stores
// items keyed by PK|SK and answers queries by matching key attributes
// directly, which is all the single-table layout here needs.
type TestClient struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	disabled bool
	updates  int
}

func NewTestClient() *TestClient {
	return &TestClient{items: map[string]map[string]types.AttributeValue{}}
}

func attrS(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func itemKey(item map[string]types.AttributeValue) string {
	return attrS(item, "PK") + "|" + attrS(item, "SK")
}

func (c *TestClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return nil, client.ErrNetworkDisabled
	}
	item := c.items[itemKey(params.Key)]
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (c *TestClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return nil, client.ErrNetworkDisabled
	}
	key := itemKey(params.Item)
	if params.ConditionExpression != nil &&
		strings.Contains(*params.ConditionExpression, "attribute_not_exists") {
		if _, exists := c.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	c.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (c *TestClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return nil, client.ErrNetworkDisabled
	}
	c.updates++
	return &dynamodb.UpdateItemOutput{}, nil
}

func (c *TestClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return nil, client.ErrNetworkDisabled
	}
	delete(c.items, itemKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (c *TestClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return nil, client.ErrNetworkDisabled
	}

	// Pull the concrete key values out of the expression placeholders.
	var values []string
	for _, v := range params.ExpressionAttributeValues {
		if s, ok := v.(*types.AttributeValueMemberS); ok {
			values = append(values, s.Value)
		}
	}
	target := ""
	prefix := "USER#"
	if params.IndexName != nil && *params.IndexName == "GSI1" {
		prefix = "COMPANY#"
	}
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			target = v
			break
		}
	}

	var out []map[string]types.AttributeValue
	for _, item := range c.items {
		if params.IndexName != nil && *params.IndexName == "GSI1" {
			if attrS(item, "GSI1PK") == target && attrS(item, "GSI1SK") == "COMPANY" {
				out = append(out, item)
			}
			continue
		}
		if attrS(item, "PK") == target && strings.HasPrefix(attrS(item, "SK"), "COMPANY#") {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return itemKey(out[i]) < itemKey(out[j]) })
	return &dynamodb.QueryOutput{Items: out}, nil
}

func (c *TestClient) EnableNetwork() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = false
	return nil
}

func (c *TestClient) DisableNetwork() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = true
	return nil
}

func newTestRepo(c client.Client, pollInterval time.Duration) *CompanyRepository {
	return NewCompanyRepository(c, "quillbooks-test", pollInterval, zap.NewNop())
}

func testCompany(id string) *company.Company {
	return &company.Company{
		CompanyID: id,
		OwnerID:   "user-1",
		Name:      "Acme Co",
		CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateCompany(t *testing.T) {
	t.Run("creates and reads back via GSI1", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 0)

		created, err := repo.CreateCompany(context.Background(), testCompany("acme-co-1"))
		require.NoError(t, err)
		assert.Equal(t, "acme-co-1", created.CompanyID)

		got, err := repo.GetCompany(context.Background(), "acme-co-1")
		require.NoError(t, err)
		assert.Equal(t, "Acme Co", got.Name)
		assert.Equal(t, "user-1", got.OwnerID)
	})

	t.Run("duplicate id fails with conflict", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 0)
		_, err := repo.CreateCompany(context.Background(), testCompany("acme-co-1"))
		require.NoError(t, err)

		_, err = repo.CreateCompany(context.Background(), testCompany("acme-co-1"))

		require.Error(t, err)
		var appErr commonErrors.AppError
		require.True(t, stderrors.As(err, &appErr))
		assert.Equal(t, "CONFLICT", appErr.Code)
	})
}

func TestGetCompany(t *testing.T) {
	t.Run("unknown id fails with not found", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 0)

		_, err := repo.GetCompany(context.Background(), "ghost-co-1")

		assert.True(t, stderrors.Is(err, commonErrors.ErrNotFound))
	})

	t.Run("network gate closed fails with transport error", func(t *testing.T) {
		tc := NewTestClient()
		repo := newTestRepo(tc, 0)
		_, err := repo.CreateCompany(context.Background(), testCompany("acme-co-1"))
		require.NoError(t, err)
		require.NoError(t, tc.DisableNetwork())

		_, err = repo.GetCompany(context.Background(), "acme-co-1")

		assert.True(t, stderrors.Is(err, commonErrors.ErrTransportFailure))
	})
}

func TestListCompanies(t *testing.T) {
	repo := newTestRepo(NewTestClient(), 0)
	c1 := testCompany("acme-co-1")
	c2 := testCompany("globex-co-2")
	c2.Name = "Globex"
	_, err := repo.CreateCompany(context.Background(), c1)
	require.NoError(t, err)
	_, err = repo.CreateCompany(context.Background(), c2)
	require.NoError(t, err)

	t.Run("returns the owner's companies", func(t *testing.T) {
		companies, err := repo.ListCompanies(context.Background(), "user-1")
		require.NoError(t, err)
		require.Len(t, companies, 2)
		assert.Equal(t, "acme-co-1", companies[0].CompanyID)
		assert.Equal(t, "globex-co-2", companies[1].CompanyID)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		companies, err := repo.ListCompanies(context.Background(), "user-2")
		require.NoError(t, err)
		assert.Empty(t, companies)
	})
}

func TestUpdateCompanyInfo(t *testing.T) {
	t.Run("returns the updated record", func(t *testing.T) {
		tc := NewTestClient()
		repo := newTestRepo(tc, 0)
		_, err := repo.CreateCompany(context.Background(), testCompany("acme-co-1"))
		require.NoError(t, err)

		updated, err := repo.UpdateCompanyInfo(context.Background(), "acme-co-1", &company.UpdateInfoRequest{
			Name:           "Acme Holdings",
			BankAccountIDs: []string{"ba-1"},
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme Holdings", updated.Name)
		assert.Equal(t, []string{"ba-1"}, updated.BankAccountIDs)
		assert.Equal(t, 1, tc.updates)
	})

	t.Run("empty request is a no-op", func(t *testing.T) {
		tc := NewTestClient()
		repo := newTestRepo(tc, 0)
		_, err := repo.CreateCompany(context.Background(), testCompany("acme-co-1"))
		require.NoError(t, err)

		updated, err := repo.UpdateCompanyInfo(context.Background(), "acme-co-1", &company.UpdateInfoRequest{})

		require.NoError(t, err)
		assert.Equal(t, "Acme Co", updated.Name)
		assert.Equal(t, 0, tc.updates)
	})

	t.Run("unknown company fails with not found", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 0)

		_, err := repo.UpdateCompanyInfo(context.Background(), "ghost-co-1", &company.UpdateInfoRequest{Name: "X"})

		assert.True(t, stderrors.Is(err, commonErrors.ErrNotFound))
	})
}

func TestPutGetData(t *testing.T) {
	t.Run("round-trips the document", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 0)
		data := company.DefaultData("acme-co-1")
		data.Transactions = []company.Transaction{
			{TransactionID: "t1", Date: "2026-08-01", Description: "Coffee", Amount: -450},
		}

		require.NoError(t, repo.PutData(context.Background(), data))

		got, err := repo.GetData(context.Background(), "acme-co-1")
		require.NoError(t, err)
		assert.Equal(t, "acme-co-1", got.CompanyID)
		require.Len(t, got.Transactions, 1)
		assert.Equal(t, int64(-450), got.Transactions[0].Amount)
	})

	t.Run("missing document fails with not found", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 0)

		_, err := repo.GetData(context.Background(), "ghost-co-1")

		assert.True(t, stderrors.Is(err, commonErrors.ErrNotFound))
	})

	t.Run("rejects a document without an id", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 0)

		err := repo.PutData(context.Background(), company.Data{})

		assert.Error(t, err)
	})

	t.Run("every write gets a fresh revision", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 0)
		require.NoError(t, repo.PutData(context.Background(), company.DefaultData("acme-co-1")))
		_, rev1, err := repo.getDataWithRev(context.Background(), "acme-co-1")
		require.NoError(t, err)

		require.NoError(t, repo.PutData(context.Background(), company.DefaultData("acme-co-1")))
		_, rev2, err := repo.getDataWithRev(context.Background(), "acme-co-1")
		require.NoError(t, err)

		assert.NotEqual(t, rev1, rev2)
	})
}

func TestWatchData(t *testing.T) {
	t.Run("reports the current document and later revisions", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 10*time.Millisecond)
		require.NoError(t, repo.PutData(context.Background(), company.DefaultData("acme-co-1")))

		var mu sync.Mutex
		var seen []company.Data
		cancel, err := repo.WatchData(context.Background(), "acme-co-1",
			func(data company.Data) {
				mu.Lock()
				seen = append(seen, data)
				mu.Unlock()
			},
			func(err error) { t.Errorf("unexpected watch error: %v", err) },
		)
		require.NoError(t, err)
		defer cancel()

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(seen) == 1
		}, time.Second, 5*time.Millisecond)

		changed := company.DefaultData("acme-co-1")
		changed.Customers = []company.Customer{{CustomerID: "c1", Name: "Globex"}}
		require.NoError(t, repo.PutData(context.Background(), changed))

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(seen) == 2
		}, time.Second, 5*time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.Empty(t, seen[0].Customers)
		require.Len(t, seen[1].Customers, 1)
	})

	t.Run("unchanged revisions are not re-reported", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 5*time.Millisecond)
		require.NoError(t, repo.PutData(context.Background(), company.DefaultData("acme-co-1")))

		var mu sync.Mutex
		notifications := 0
		cancel, err := repo.WatchData(context.Background(), "acme-co-1",
			func(company.Data) {
				mu.Lock()
				notifications++
				mu.Unlock()
			},
			func(err error) { t.Errorf("unexpected watch error: %v", err) },
		)
		require.NoError(t, err)
		defer cancel()

		time.Sleep(50 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, notifications)
	})

	t.Run("missing document surfaces as a watch error", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 10*time.Millisecond)

		errs := make(chan error, 1)
		cancel, err := repo.WatchData(context.Background(), "ghost-co-1",
			func(company.Data) { t.Error("unexpected data notification") },
			func(err error) {
				select {
				case errs <- err:
				default:
				}
			},
		)
		require.NoError(t, err)
		defer cancel()

		select {
		case err := <-errs:
			assert.True(t, stderrors.Is(err, commonErrors.ErrNotFound))
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for watch error")
		}
	})

	t.Run("cancel stops notifications", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 5*time.Millisecond)
		require.NoError(t, repo.PutData(context.Background(), company.DefaultData("acme-co-1")))

		var mu sync.Mutex
		notifications := 0
		cancel, err := repo.WatchData(context.Background(), "acme-co-1",
			func(company.Data) {
				mu.Lock()
				notifications++
				mu.Unlock()
			},
			func(error) {},
		)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return notifications == 1
		}, time.Second, time.Millisecond)

		cancel()
		time.Sleep(20 * time.Millisecond)
		changed := company.DefaultData("acme-co-1")
		changed.Vendors = []company.Vendor{{VendorID: "v1", Name: "Initech"}}
		require.NoError(t, repo.PutData(context.Background(), changed))
		time.Sleep(30 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, notifications)
	})
}

func TestTransportFailures(t *testing.T) {
	transportErr := stderrors.New("RequestError: send request failed")

	t.Run("put data", func(t *testing.T) {
		mock := client.NewMockClient()
		mock.PutItemFn = func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			return nil, transportErr
		}
		repo := newTestRepo(mock, 0)

		err := repo.PutData(context.Background(), company.DefaultData("acme-co-1"))

		assert.True(t, stderrors.Is(err, commonErrors.ErrTransportFailure))
		assert.True(t, stderrors.Is(err, transportErr))
	})

	t.Run("get data", func(t *testing.T) {
		mock := client.NewMockClient()
		mock.GetItemFn = func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			return nil, transportErr
		}
		repo := newTestRepo(mock, 0)

		_, err := repo.GetData(context.Background(), "acme-co-1")

		assert.True(t, stderrors.Is(err, commonErrors.ErrTransportFailure))
	})

	t.Run("list companies", func(t *testing.T) {
		mock := client.NewMockClient()
		mock.QueryFn = func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			return nil, transportErr
		}
		repo := newTestRepo(mock, 0)

		_, err := repo.ListCompanies(context.Background(), "user-1")

		assert.True(t, stderrors.Is(err, commonErrors.ErrTransportFailure))
	})
}

func TestWatchCompanies(t *testing.T) {
	t.Run("reports the initial set and later additions", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 10*time.Millisecond)
		_, err := repo.CreateCompany(context.Background(), testCompany("acme-co-1"))
		require.NoError(t, err)

		var mu sync.Mutex
		var sizes []int
		cancel, err := repo.WatchCompanies(context.Background(), "user-1",
			func(companies []*company.Company) {
				mu.Lock()
				sizes = append(sizes, len(companies))
				mu.Unlock()
			},
			func(err error) { t.Errorf("unexpected watch error: %v", err) },
		)
		require.NoError(t, err)
		defer cancel()

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(sizes) == 1 && sizes[0] == 1
		}, time.Second, 5*time.Millisecond)

		c2 := testCompany("globex-co-2")
		c2.Name = "Globex"
		_, err = repo.CreateCompany(context.Background(), c2)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(sizes) == 2 && sizes[1] == 2
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("an empty set still seeds the watcher", func(t *testing.T) {
		repo := newTestRepo(NewTestClient(), 10*time.Millisecond)

		seeded := make(chan struct{}, 1)
		cancel, err := repo.WatchCompanies(context.Background(), "user-1",
			func(companies []*company.Company) {
				assert.Empty(t, companies)
				select {
				case seeded <- struct{}{}:
				default:
				}
			},
			func(err error) { t.Errorf("unexpected watch error: %v", err) },
		)
		require.NoError(t, err)
		defer cancel()

		select {
		case <-seeded:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for initial companies notification")
		}
	})
}
