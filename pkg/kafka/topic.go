package kafka

// TopicPrefix is the namespace shared by all FreshMarket topics.
const TopicPrefix = "freshmarket"

// Topic builds a fully-qualified topic name, e.g. "freshmarket.cart.updated".
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}
