package client

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gitlab.com/open-soft/go-vote-trader/src/model"
)

const transientErrorPrefix = "exchange transient error"

type ExchangeAPIInterface interface {
	PlaceOrder(symbol string, side string, price float64, amount float64, orderType string) (model.OrderResult, error)
	GetBalance(currency string) (float64, error)
	GetCandles(symbol string, interval string, count int) ([]model.KLine, error)
	GetTicker(symbol string) (model.Ticker, error)
}

// IsTransientError reports whether a failed exchange call may be retried.
// Rejections (4xx) are permanent, connectivity and 5xx responses are not.
func IsTransientError(err error) bool {
	return err != nil && strings.Contains(err.Error(), transientErrorPrefix)
}

type Exchange struct {
	ApiKey         string
	ApiSecret      string
	DestinationURI string
	HttpClient     *http.Client
}

type accountBalance struct {
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
	Locked   string `json:"locked"`
}

type orderResponse struct {
	Uuid    string `json:"uuid"`
	State   string `json:"state"`
	Message string `json:"message"`
}

type candleResponse struct {
	Market    string  `json:"market"`
	Open      float64 `json:"opening_price"`
	High      float64 `json:"high_price"`
	Low       float64 `json:"low_price"`
	Close     float64 `json:"trade_price"`
	Volume    float64 `json:"candle_acc_trade_volume"`
	Timestamp int64   `json:"timestamp"`
}

type tickerResponse struct {
	Market    string  `json:"market"`
	Price     float64 `json:"trade_price"`
	Timestamp int64   `json:"timestamp"`
}

func (e *Exchange) PlaceOrder(symbol string, side string, price float64, amount float64, orderType string) (model.OrderResult, error) {
	params := url.Values{}
	params.Set("market", symbol)
	params.Set("side", side)
	params.Set("ord_type", orderType)
	params.Set("price", strconv.FormatFloat(price, 'f', -1, 64))
	params.Set("volume", strconv.FormatFloat(amount, 'f', -1, 64))

	body, err := e.request("POST", "/v1/orders", params)

	if err != nil {
		return model.OrderResult{Success: false, Message: err.Error()}, err
	}

	var response orderResponse
	err = json.Unmarshal(body, &response)

	if err != nil {
		return model.OrderResult{Success: false, Message: err.Error()}, err
	}

	if response.Uuid == "" {
		return model.OrderResult{
			Success: false,
			Message: response.Message,
		}, errors.New(fmt.Sprintf("[%s] Order is rejected: %s", symbol, response.Message))
	}

	return model.OrderResult{
		Success: true,
		OrderId: response.Uuid,
		Message: response.State,
	}, nil
}

func (e *Exchange) GetBalance(currency string) (float64, error) {
	body, err := e.request("GET", "/v1/accounts", url.Values{})

	if err != nil {
		return 0.00, err
	}

	var balances []accountBalance
	err = json.Unmarshal(body, &balances)

	if err != nil {
		return 0.00, err
	}

	for _, balance := range balances {
		if balance.Currency == currency {
			value, parseErr := strconv.ParseFloat(balance.Balance, 64)
			if parseErr != nil {
				return 0.00, parseErr
			}

			return value, nil
		}
	}

	return 0.00, nil
}

func (e *Exchange) GetCandles(symbol string, interval string, count int) ([]model.KLine, error) {
	params := url.Values{}
	params.Set("market", symbol)
	params.Set("count", strconv.Itoa(count))

	body, err := e.request("GET", fmt.Sprintf("/v1/candles/minutes/%s", interval), params)

	if err != nil {
		return nil, err
	}

	var candles []candleResponse
	err = json.Unmarshal(body, &candles)

	if err != nil {
		return nil, err
	}

	// API returns newest first, engine expects oldest first
	kLines := make([]model.KLine, 0, len(candles))
	for i := len(candles) - 1; i >= 0; i-- {
		candle := candles[i]
		kLines = append(kLines, model.KLine{
			Symbol:    candle.Market,
			Open:      model.Price(candle.Open),
			High:      model.Price(candle.High),
			Low:       model.Price(candle.Low),
			Close:     model.Price(candle.Close),
			Volume:    model.Volume(candle.Volume),
			Interval:  interval,
			Timestamp: model.TimestampMilli(candle.Timestamp),
			UpdatedAt: time.Now().Unix(),
		})
	}

	return kLines, nil
}

func (e *Exchange) GetTicker(symbol string) (model.Ticker, error) {
	params := url.Values{}
	params.Set("markets", symbol)

	body, err := e.request("GET", "/v1/ticker", params)

	if err != nil {
		return model.Ticker{}, err
	}

	var tickers []tickerResponse
	err = json.Unmarshal(body, &tickers)

	if err != nil {
		return model.Ticker{}, err
	}

	if len(tickers) == 0 {
		return model.Ticker{}, errors.New(fmt.Sprintf("[%s] Ticker is not found", symbol))
	}

	return model.Ticker{
		Symbol:    tickers[0].Market,
		Price:     model.Price(tickers[0].Price),
		Timestamp: model.TimestampMilli(tickers[0].Timestamp),
	}, nil
}

func (e *Exchange) request(method string, path string, params url.Values) ([]byte, error) {
	query := params.Encode()
	uri := fmt.Sprintf("%s%s", e.DestinationURI, path)

	var req *http.Request
	var err error

	if method == "GET" {
		req, err = http.NewRequest(method, fmt.Sprintf("%s?%s", uri, query), nil)
	} else {
		req, err = http.NewRequest(method, uri, strings.NewReader(query))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}

	if err != nil {
		return nil, err
	}

	req.Header.Set("X-Api-Key", e.ApiKey)
	req.Header.Set("X-Api-Signature", e.sign(query))

	response, err := e.HttpClient.Do(req)

	if err != nil {
		return nil, errors.New(fmt.Sprintf("%s: %s", transientErrorPrefix, err.Error()))
	}

	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)

	if err != nil {
		return nil, errors.New(fmt.Sprintf("%s: %s", transientErrorPrefix, err.Error()))
	}

	if response.StatusCode >= 500 {
		return nil, errors.New(fmt.Sprintf("%s: HTTP %d: %s", transientErrorPrefix, response.StatusCode, string(body)))
	}

	if response.StatusCode >= 400 {
		return nil, errors.New(fmt.Sprintf("exchange rejected request: HTTP %d: %s", response.StatusCode, string(body)))
	}

	return body, nil
}

func (e *Exchange) sign(query string) string {
	mac := hmac.New(sha512.New, []byte(e.ApiSecret))
	mac.Write([]byte(query))

	return hex.EncodeToString(mac.Sum(nil))
}
