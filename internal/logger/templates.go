package logger

func (l Logger) TemplChainErr(message string, fromBlock, toBlock uint64, err error) {
	l.Error(message, "stream", Logstream(LS_CHAIN).ToString(), "from_block", fromBlock, "to_block", toBlock, "error", err.Error())
}

// out-of-sequence or duplicate projection transition, state left unchanged
func (l Logger) TemplAnomaly(message string, eventName string, paymentId string, block uint64) {
	l.Error(message, "stream", Logstream(LS_PROJECTOR).ToString(), "event", eventName, "payment_id", paymentId, "block", block)
}

func (l Logger) TemplWebhookErr(message, url string, deliveryId uint, attempts int, payload []byte) {
	l.Error(message, "stream", Logstream(LS_WEBHOOKS).ToString(), "url", url, "delivery_id", deliveryId, "attempts", attempts, "payload", string(payload))
}

func (l Logger) TemplWebhookInfo(message, url string, deliveryId uint, attempts int) {
	l.Info(message, "stream", Logstream(LS_WEBHOOKS).ToString(), "url", url, "delivery_id", deliveryId, "attempts", attempts)
}

func (l Logger) TemplAPIErr(message, errid, uri, clientIp string) {
	l.Error(message, "stream", Logstream(LS_API).ToString(), "error_id", errid, "uri", uri, "ip", clientIp)
}

// use only for fatal errors
func (l Logger) TemplHTTPError(message string, ipv4 string, err error) {
	l.Fatal(message, "stream", Logstream(LS_FATAL).ToString(), "error", err.Error(), "ipv4", ipv4)
}
