package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shoestore/internal/config"
)

const requestTypeCaptureWallet = "captureWallet"

// 決済作成の入力
type CreateRequest struct {
	RequestID string
	OrderRef  string // プロバイダ側のorderId（毎回一意）
	Amount    int64
	OrderInfo string
	ExtraData string
}

type CreateResponse struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	ResultCode  int    `json:"resultCode"`
	Message     string `json:"message"`
	PayURL      string `json:"payUrl"`
}

// IPN（POST）とリダイレクト（GETクエリ）で同じ項目が来る
type Callback struct {
	PartnerCode  string `json:"partnerCode" query:"partnerCode"`
	OrderID      string `json:"orderId" query:"orderId"`
	RequestID    string `json:"requestId" query:"requestId"`
	Amount       int64  `json:"amount" query:"amount"`
	OrderInfo    string `json:"orderInfo" query:"orderInfo"`
	OrderType    string `json:"orderType" query:"orderType"`
	TransID      int64  `json:"transId" query:"transId"`
	ResultCode   int    `json:"resultCode" query:"resultCode"`
	Message      string `json:"message" query:"message"`
	PayType      string `json:"payType" query:"payType"`
	ResponseTime int64  `json:"responseTime" query:"responseTime"`
	ExtraData    string `json:"extraData" query:"extraData"`
	Signature    string `json:"signature" query:"signature"`
}

// MoMoのHTTP API（HMAC-SHA256署名）
type MomoClient struct {
	cfg  config.MomoConfig
	http *http.Client
}

func NewMomoClient(cfg config.MomoConfig) *MomoClient {
	return &MomoClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *MomoClient) CreatePayment(ctx context.Context, in CreateRequest) (CreateResponse, error) {
	raw := "accessKey=" + c.cfg.AccessKey +
		"&amount=" + strconv.FormatInt(in.Amount, 10) +
		"&extraData=" + in.ExtraData +
		"&ipnUrl=" + c.cfg.IPNURL +
		"&orderId=" + in.OrderRef +
		"&orderInfo=" + in.OrderInfo +
		"&partnerCode=" + c.cfg.PartnerCode +
		"&redirectUrl=" + c.cfg.RedirectURL +
		"&requestId=" + in.RequestID +
		"&requestType=" + requestTypeCaptureWallet

	body, err := json.Marshal(map[string]interface{}{
		"partnerCode": c.cfg.PartnerCode,
		"accessKey":   c.cfg.AccessKey,
		"requestId":   in.RequestID,
		"amount":      in.Amount,
		"orderId":     in.OrderRef,
		"orderInfo":   in.OrderInfo,
		"redirectUrl": c.cfg.RedirectURL,
		"ipnUrl":      c.cfg.IPNURL,
		"extraData":   in.ExtraData,
		"requestType": requestTypeCaptureWallet,
		"signature":   sign(c.cfg.SecretKey, raw),
		"lang":        "vi",
	})
	if err != nil {
		return CreateResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return CreateResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return CreateResponse{}, fmt.Errorf("momo request: %w", err)
	}
	defer resp.Body.Close()

	var out CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CreateResponse{}, fmt.Errorf("momo decode (status %d): %w", resp.StatusCode, err)
	}
	if out.ResultCode != 0 || out.PayURL == "" {
		return out, fmt.Errorf("momo rejected: %d %s", out.ResultCode, out.Message)
	}
	return out, nil
}

// 署名が正しいか
func (c *MomoClient) VerifyCallback(cb Callback) bool {
	return hmac.Equal([]byte(c.SignCallback(cb)), []byte(cb.Signature))
}

// コールバックの署名を計算する（Signature自体は含めない）
func (c *MomoClient) SignCallback(cb Callback) string {
	raw := "accessKey=" + c.cfg.AccessKey +
		"&amount=" + strconv.FormatInt(cb.Amount, 10) +
		"&extraData=" + cb.ExtraData +
		"&message=" + cb.Message +
		"&orderId=" + cb.OrderID +
		"&orderInfo=" + cb.OrderInfo +
		"&orderType=" + cb.OrderType +
		"&partnerCode=" + cb.PartnerCode +
		"&payType=" + cb.PayType +
		"&requestId=" + cb.RequestID +
		"&responseTime=" + strconv.FormatInt(cb.ResponseTime, 10) +
		"&resultCode=" + strconv.Itoa(cb.ResultCode) +
		"&transId=" + strconv.FormatInt(cb.TransID, 10)
	return sign(c.cfg.SecretKey, raw)
}

func sign(secret, raw string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
