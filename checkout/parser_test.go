package checkout_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gocheckout/checkout"
)

func TestParse_OrderNumberScenario(t *testing.T) {
	n, err := checkout.Parse([]byte(
		`<new-order-notification><google-order-number><value>123</value></google-order-number></new-order-notification>`))
	require.NoError(t, err)
	require.Equal(t, checkout.KindNewOrder, n.Kind)

	value, err := n.Root.Text("google_order_number.value")
	require.NoError(t, err)
	require.Equal(t, "123", value)

	number, err := n.OrderNumber()
	require.NoError(t, err)
	require.Equal(t, "123", number)
}

func TestParse_SerialAttribute(t *testing.T) {
	n, err := checkout.Parse([]byte(`
		<charge-amount-notification xmlns="http://checkout.google.com/schema/2" serial-number="95d44287-12b1-4722">
			<google-order-number>841171949013218</google-order-number>
			<latest-charge-amount currency="GBP">2.50</latest-charge-amount>
		</charge-amount-notification>`))
	require.NoError(t, err)
	require.Equal(t, checkout.KindChargeAmount, n.Kind)
	require.Equal(t, "95d44287-12b1-4722", n.Serial)

	// attributes merge into the same namespace as elements
	serial, err := n.Root.Text("serial_number")
	require.NoError(t, err)
	require.Equal(t, "95d44287-12b1-4722", serial)

	number, err := n.OrderNumber()
	require.NoError(t, err)
	require.Equal(t, "841171949013218", number)
}

func TestParse_CartItemsFlattened(t *testing.T) {
	n, err := checkout.Parse([]byte(`
		<new-order-notification serial-number="s-1">
			<google-order-number>555</google-order-number>
			<shopping-cart>
				<items>
					<item><item-name>apple</item-name><unit-price currency="GBP">0.30</unit-price></item>
					<item><item-name>pear</item-name><unit-price currency="GBP">0.35</unit-price></item>
					<item><item-name>plum</item-name><unit-price currency="GBP">0.40</unit-price></item>
				</items>
			</shopping-cart>
		</new-order-notification>`))
	require.NoError(t, err)

	items, err := n.Root.List("shopping_cart.items")
	require.NoError(t, err)
	require.Len(t, items, 3)

	// document order preserved, every element fully addressable
	names := []string{"apple", "pear", "plum"}
	for i, item := range items {
		name, err := item.Text("item_name")
		require.NoError(t, err)
		require.Equal(t, names[i], name)
	}
}

func TestParse_CartWithSingleItem(t *testing.T) {
	n, err := checkout.Parse([]byte(`
		<new-order-notification>
			<shopping-cart>
				<items>
					<item><item-name>apple</item-name></item>
				</items>
			</shopping-cart>
		</new-order-notification>`))
	require.NoError(t, err)

	items, err := n.Root.List("shopping_cart.items")
	require.NoError(t, err)
	require.Len(t, items, 1)
	name, err := items[0].Text("item_name")
	require.NoError(t, err)
	require.Equal(t, "apple", name)
}

func TestParse_EmptyCart(t *testing.T) {
	n, err := checkout.Parse([]byte(`
		<new-order-notification>
			<shopping-cart><items></items></shopping-cart>
		</new-order-notification>`))
	require.NoError(t, err)

	items, err := n.Root.List("shopping_cart.items")
	require.NoError(t, err)
	require.Len(t, items, 0)
}

func TestParse_Malformed(t *testing.T) {
	for _, body := range []string{
		"",
		"not xml at all",
		"<new-order-notification><google-order-number></new-order-notification>",
		"<unclosed>",
	} {
		_, err := checkout.Parse([]byte(body))
		require.ErrorIs(t, err, checkout.ErrMalformed, "body %q", body)
	}
}

func TestKindOf(t *testing.T) {
	require.Equal(t, checkout.KindNewOrder, checkout.KindOf("new-order-notification"))
	require.Equal(t, checkout.KindRiskInformation, checkout.KindOf("risk-information-notification"))
	require.Equal(t, checkout.KindOrderStateChange, checkout.KindOf("order-state-change-notification"))
	require.Equal(t, checkout.KindChargeAmount, checkout.KindOf("charge-amount-notification"))
	require.Equal(t, checkout.KindChargebackAmount, checkout.KindOf("chargeback-amount-notification"))
	require.Equal(t, checkout.KindRefundAmount, checkout.KindOf("refund-amount-notification"))
	require.Equal(t, checkout.KindAuthorizationAmount, checkout.KindOf("authorization-amount-notification"))
	require.Equal(t, checkout.KindUnknown, checkout.KindOf("cancelled-subscription-notification"))
}
