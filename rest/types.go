package rest

import "fmt"

// statusOK is the value of the "s" discriminator on successful responses
const statusOK = "ok"

// APIError is a non-ok response from the Fyers REST API
type APIError struct {
	Status  string `json:"s"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fyers api error %d: %s", e.Code, e.Message)
}

// Quote is the per-symbol payload of the quotes API
type Quote struct {
	Symbol         string  `json:"symbol"`
	ShortName      string  `json:"short_name"`
	Exchange       string  `json:"exchange"`
	Description    string  `json:"description"`
	OriginalName   string  `json:"original_name"`
	FyToken        string  `json:"fyToken"`
	LastPrice      float64 `json:"lp"`
	Change         float64 `json:"ch"`
	ChangePercent  float64 `json:"chp"`
	Spread         float64 `json:"spread"`
	Ask            float64 `json:"ask"`
	Bid            float64 `json:"bid"`
	Open           float64 `json:"open_price"`
	High           float64 `json:"high_price"`
	Low            float64 `json:"low_price"`
	PrevClose      float64 `json:"prev_close_price"`
	Volume         int64   `json:"volume"`
	LastTradedTime int64   `json:"tt"`
}

// quoteEntry wraps one symbol's quote in the response array. Each entry has
// its own "s" discriminator: a mixed batch can succeed for some symbols and
// fail for others.
type quoteEntry struct {
	Name   string `json:"n"`
	Status string `json:"s"`
	Quote  *Quote `json:"v"`
}

type quotesResponse struct {
	Status  string       `json:"s"`
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    []quoteEntry `json:"d"`
}

// DepthLevel is one price level of the order book
type DepthLevel struct {
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
	Orders int64   `json:"ord"`
}

// Depth is the market depth payload for a single symbol
type Depth struct {
	TotalBuyQty    int64        `json:"totalbuyqty"`
	TotalSellQty   int64        `json:"totalsellqty"`
	Bids           []DepthLevel `json:"bids"`
	Asks           []DepthLevel `json:"ask"`
	Open           float64      `json:"o"`
	High           float64      `json:"h"`
	Low            float64      `json:"l"`
	Close          float64      `json:"c"`
	Change         float64      `json:"ch"`
	ChangePercent  float64      `json:"chp"`
	LastTradedQty  int64        `json:"ltq"`
	LastTradedTime int64        `json:"ltt"`
	LastPrice      float64      `json:"ltp"`
	Volume         int64        `json:"v"`
	AvgTradePrice  float64      `json:"atp"`
	LowerCircuit   float64      `json:"lower_ckt"`
	UpperCircuit   float64      `json:"upper_ckt"`
	OpenInterest   int64        `json:"oi"`
	PrevDayOI      int64        `json:"pdoi"`
	OIPercent      float64      `json:"oipercent"`
	Expiry         string       `json:"expiry"`
}

type depthResponse struct {
	Status  string           `json:"s"`
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    map[string]Depth `json:"d"`
}

// Order is one entry of the orderbook
type Order struct {
	ID             string  `json:"id"`
	ExchOrdID      string  `json:"exchOrdId"`
	Symbol         string  `json:"symbol"`
	FyToken        string  `json:"fyToken"`
	Status         int     `json:"status"`
	Message        string  `json:"message"`
	Segment        int     `json:"segment"`
	Instrument     int     `json:"instrument"`
	ProductType    string  `json:"productType"`
	Type           int     `json:"type"`
	Side           int     `json:"side"`
	Qty            int     `json:"qty"`
	FilledQty      int     `json:"filledQty"`
	RemainingQty   int     `json:"remainingQuantity"`
	DisclosedQty   int     `json:"discloseQty"`
	LimitPrice     float64 `json:"limitPrice"`
	StopPrice      float64 `json:"stopPrice"`
	TradedPrice    float64 `json:"tradedPrice"`
	OfflineOrder   bool    `json:"offlineOrder"`
	OrderValidity  string  `json:"orderValidity"`
	OrderDateTime  string  `json:"orderDateTime"`
	OrderNumStatus string  `json:"orderNumStatus"`
	SlNo           int     `json:"slNo"`
	DqQtyRem       int     `json:"dqQtyRem"`
}

type orderbookResponse struct {
	Status    string  `json:"s"`
	Code      int     `json:"code"`
	Message   string  `json:"message"`
	OrderBook []Order `json:"orderBook"`
}

// Position is one entry of the net positions report
type Position struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	FyToken       string  `json:"fyToken"`
	Segment       int     `json:"segment"`
	ProductType   string  `json:"productType"`
	Side          int     `json:"side"`
	BuyQty        int     `json:"buyQty"`
	BuyAvg        float64 `json:"buyAvg"`
	BuyVal        float64 `json:"buyVal"`
	SellQty       int     `json:"sellQty"`
	SellAvg       float64 `json:"sellAvg"`
	SellVal       float64 `json:"sellVal"`
	NetQty        int     `json:"netQty"`
	NetAvg        float64 `json:"netAvg"`
	AvgPrice      float64 `json:"avgPrice"`
	LastPrice     float64 `json:"ltp"`
	RealizedPL    float64 `json:"realized_profit"`
	UnrealizedPL  float64 `json:"unrealized_profit"`
	PL            float64 `json:"pl"`
	CrossCurrency string  `json:"crossCurrency"`
	QtyMultiplier float64 `json:"qtyMulti_com"`
}

// PositionsOverall aggregates the positions report
type PositionsOverall struct {
	CountTotal   int     `json:"count_total"`
	CountOpen    int     `json:"count_open"`
	PLTotal      float64 `json:"pl_total"`
	PLRealized   float64 `json:"pl_realized"`
	PLUnrealized float64 `json:"pl_unrealized"`
}

// PositionsReport is the full positions response payload
type PositionsReport struct {
	NetPositions []Position       `json:"netPositions"`
	Overall      PositionsOverall `json:"overall"`
}

type positionsResponse struct {
	Status  string `json:"s"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	PositionsReport
}

// Trade is one entry of the tradebook
type Trade struct {
	ID            string  `json:"id"`
	OrderNumber   string  `json:"orderNumber"`
	ExchangeOrdNo string  `json:"exchangeOrderNo"`
	Symbol        string  `json:"symbol"`
	FyToken       string  `json:"fyToken"`
	Segment       int     `json:"segment"`
	Side          int     `json:"side"`
	ProductType   string  `json:"productType"`
	TradedQty     int     `json:"tradedQty"`
	TradePrice    float64 `json:"tradePrice"`
	TradeValue    float64 `json:"tradeValue"`
	TradeNumber   string  `json:"tradeNumber"`
	OrderDateTime string  `json:"orderDateTime"`
	OrderType     int     `json:"orderType"`
}

type tradebookResponse struct {
	Status    string  `json:"s"`
	Code      int     `json:"code"`
	Message   string  `json:"message"`
	TradeBook []Trade `json:"tradeBook"`
}
