package connector

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openfiling/disclosure-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// stubFetcher serves canned CSV bodies keyed by URL.
type stubFetcher struct {
	bodies map[string]string
	err    error
}

func (s *stubFetcher) Download(_ context.Context, url string) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	body, ok := s.bodies[url]
	if !ok {
		return nil, eris.Errorf("no body for %s", url)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

const houseCSV = `disclosure_date,transaction_date,owner,ticker,asset_description,type,amount,representative,state,ptr_link
10/04/2021,2021-09-27,joint,BP,BP plc,purchase,"$1,001 - $15,000",Hon. Virginia Foxx,NC,https://example.com/ptr/1.pdf
10/04/2021,2021-09-28,,XOM,Exxon Mobil,Sale (Full),"$1,001 - $15,000",Hon. Virginia Foxx,NC,https://example.com/ptr/2.pdf
`

func TestHouse_Fetch(t *testing.T) {
	url := "https://example.com/house.csv"
	h := NewHouse(&stubFetcher{bodies: map[string]string{url: houseCSV}}, url)

	records, err := h.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, SourceHouse, r.Source)
	assert.Equal(t, url, r.SourceURL)
	assert.Equal(t, "Hon. Virginia Foxx", r.OfficialName)
	assert.Equal(t, model.ChamberHouse, r.Chamber)
	assert.Equal(t, "NC", r.State)
	assert.Equal(t, "BP", r.Ticker)
	assert.Equal(t, "BP plc", r.Issuer)
	assert.Equal(t, "purchase", r.TransactionType)
	assert.Equal(t, "joint", r.Owner)
	assert.Equal(t, "2021-09-27", r.TradeDate)
	assert.Equal(t, "10/04/2021", r.ReportedDate)
	assert.Equal(t, "https://example.com/ptr/1.pdf", r.FilingURL)
	require.NotNil(t, r.AmountMin)
	require.NotNil(t, r.AmountMax)
	assert.Equal(t, "1001", r.AmountMin.String())
	assert.Equal(t, "15000", r.AmountMax.String())

	// Missing owner degrades to unknown; type is lowercased.
	assert.Equal(t, "unknown", records[1].Owner)
	assert.Equal(t, "sale (full)", records[1].TransactionType)
}

func TestHouse_FetchLimit(t *testing.T) {
	url := "https://example.com/house.csv"
	h := NewHouse(&stubFetcher{bodies: map[string]string{url: houseCSV}}, url)

	records, err := h.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestHouse_FetchError(t *testing.T) {
	h := NewHouse(&stubFetcher{err: eris.New("boom")}, "https://example.com/house.csv")

	_, err := h.Fetch(context.Background(), 0)
	assert.Error(t, err)
}

const senateCSV = `transaction_date,owner,ticker,asset_description,type,amount,senator,disclosure_date,link
09/27/2021,--,AAPL,Apple Inc,Purchase,"$15,001 - $50,000",Tommy Tuberville,10/04/2021,https://example.com/efd/1
`

func TestSenate_Fetch(t *testing.T) {
	url := "https://example.com/senate.csv"
	s := NewSenate(&stubFetcher{bodies: map[string]string{url: senateCSV}}, url)

	records, err := s.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, SourceSenate, r.Source)
	assert.Equal(t, "Tommy Tuberville", r.OfficialName)
	assert.Equal(t, model.ChamberSenate, r.Chamber)
	assert.Equal(t, "unknown", r.Owner)
	assert.Equal(t, "purchase", r.TransactionType)
	assert.Equal(t, "09/27/2021", r.TradeDate)
	assert.Equal(t, "https://example.com/efd/1", r.FilingURL)
	require.NotNil(t, r.AmountMax)
	assert.Equal(t, "50000", r.AmountMax.String())
}

func TestUKRegister_FetchUnconfigured(t *testing.T) {
	u := NewUKRegister(&stubFetcher{}, "")

	records, err := u.Fetch(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, records)
}

const ukCSV = `member,company,type,amount,date,filed_date,url
Jane Smith MP,Acme Holdings,buy,5000,2024-02-01,2024-02-10,https://example.com/register/1
`

func TestUKRegister_Fetch(t *testing.T) {
	url := "https://example.com/uk.csv"
	u := NewUKRegister(&stubFetcher{bodies: map[string]string{url: ukCSV}}, url)

	records, err := u.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, SourceUK, r.Source)
	assert.Equal(t, "Jane Smith MP", r.OfficialName)
	assert.Equal(t, model.ChamberOther, r.Chamber)
	assert.Equal(t, "Acme Holdings", r.Issuer)
	assert.Equal(t, "5000", r.Amount)
	// UK amounts stay raw for the engine to parse.
	assert.Nil(t, r.AmountMin)
	assert.Nil(t, r.AmountMax)
}
