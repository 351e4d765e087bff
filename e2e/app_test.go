package e2e

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite provides a test suite for end-to-end tests
type E2ETestSuite struct {
	suite.Suite
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
}

// SetupSuite runs once before all tests
func (suite *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw

	browser, err := pw.Chromium.Launch()
	require.NoError(suite.T(), err, "could not launch chromium")
	suite.browser = browser

	suite.expect = playwright.NewPlaywrightAssertions()
}

// TearDownSuite runs once after all tests
func (suite *E2ETestSuite) TearDownSuite() {
	if suite.browser != nil {
		suite.browser.Close()
	}
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

// SetupTest runs before each test
func (suite *E2ETestSuite) SetupTest() {
	page, err := suite.browser.NewPage()
	require.NoError(suite.T(), err, "could not create page")
	suite.page = page

	_, err = suite.page.Goto(appURL)
	require.NoError(suite.T(), err, "could not navigate to app")
}

// TearDownTest runs after each test
func (suite *E2ETestSuite) TearDownTest() {
	if suite.page != nil {
		suite.page.Close()
	}
}

func (suite *E2ETestSuite) register(username, password, fullname string) {
	_, err := suite.page.Goto(appURL + "/register")
	require.NoError(suite.T(), err)

	err = suite.expect.Locator(suite.page.Locator(".register-form")).ToBeVisible()
	require.NoError(suite.T(), err, "register form not visible")

	require.NoError(suite.T(), suite.page.Locator("input[name=username]").Fill(username))
	require.NoError(suite.T(), suite.page.Locator("input[name=password]").Fill(password))
	require.NoError(suite.T(), suite.page.Locator("input[name=fullname]").Fill(fullname))
	require.NoError(suite.T(), suite.page.Locator(".register-btn").Click())

	// Registration redirects to login, it does not authenticate
	err = suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "did not land on login page after registration")
}

func (suite *E2ETestSuite) login(username, password string) {
	_, err := suite.page.Goto(appURL + "/login")
	require.NoError(suite.T(), err)

	err = suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "login form not visible")

	require.NoError(suite.T(), suite.page.Locator("input[name=username]").Fill(username))
	require.NoError(suite.T(), suite.page.Locator("input[name=password]").Fill(password))
	require.NoError(suite.T(), suite.page.Locator(".login-btn").Click())

	err = suite.expect.Locator(suite.page.Locator(".dashboard")).ToBeVisible()
	require.NoError(suite.T(), err, "did not reach dashboard after login")
}

func (suite *E2ETestSuite) addTransaction(txType, amount, category, description, date string) {
	_, err := suite.page.Goto(appURL + "/add")
	require.NoError(suite.T(), err)

	err = suite.expect.Locator(suite.page.Locator("#transaction-form")).ToBeVisible()
	require.NoError(suite.T(), err, "transaction form not visible")

	_, err = suite.page.Locator("select[name=type]").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{txType},
	})
	require.NoError(suite.T(), err, "failed to select type")

	require.NoError(suite.T(), suite.page.Locator("input[name=amount]").Fill(amount))
	require.NoError(suite.T(), suite.page.Locator("input[name=category]").Fill(category))
	require.NoError(suite.T(), suite.page.Locator("input[name=description]").Fill(description))
	require.NoError(suite.T(), suite.page.Locator("input[name=transaction_date]").Fill(date))
	require.NoError(suite.T(), suite.page.Locator("button.submit").Click())

	err = suite.expect.Locator(suite.page.Locator(".list-screen")).ToBeVisible()
	require.NoError(suite.T(), err, "did not land on list after submitting")
}

func (suite *E2ETestSuite) TestCompleteUserFlow() {
	suite.register("e2euser", "e2epass123", "E2E User")
	suite.login("e2euser", "e2epass123")

	// Dashboard greets by full name
	err := suite.expect.Locator(suite.page.Locator(".dashboard h1")).ToContainText("E2E User")
	require.NoError(suite.T(), err, "dashboard greeting mismatch")

	// Record an income and an expense
	suite.addTransaction("income", "1000", "salary", "Paycheck", "2024-01-01")
	suite.addTransaction("expense", "300", "rent", "January rent", "2024-01-02")

	err = suite.expect.Locator(suite.page.Locator(".transaction-row")).ToHaveCount(2)
	require.NoError(suite.T(), err, "transaction row count mismatch")

	// Summary reflects both figures
	_, err = suite.page.Goto(appURL + "/index")
	require.NoError(suite.T(), err)

	err = suite.expect.Locator(suite.page.Locator("#total-income")).ToHaveText("1000.00")
	require.NoError(suite.T(), err, "income total mismatch")
	err = suite.expect.Locator(suite.page.Locator("#total-expense")).ToHaveText("300.00")
	require.NoError(suite.T(), err, "expense total mismatch")
	err = suite.expect.Locator(suite.page.Locator("#balance")).ToHaveText("700.00")
	require.NoError(suite.T(), err, "balance mismatch")

	// Filter to income only
	_, err = suite.page.Goto(appURL + "/list?type=income")
	require.NoError(suite.T(), err)
	err = suite.expect.Locator(suite.page.Locator(".transaction-row")).ToHaveCount(1)
	require.NoError(suite.T(), err, "income filter should show one row")

	// Logout lands back on login
	_, err = suite.page.Goto(appURL + "/logout")
	require.NoError(suite.T(), err)
	err = suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "logout did not return to login")
}

func (suite *E2ETestSuite) TestLoginRejectsBadCredentials() {
	suite.register("badcreds", "rightpass1", "Bad Creds")

	_, err := suite.page.Goto(appURL + "/login")
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.page.Locator("input[name=username]").Fill("badcreds"))
	require.NoError(suite.T(), suite.page.Locator("input[name=password]").Fill("wrongpass"))
	require.NoError(suite.T(), suite.page.Locator(".login-btn").Click())

	err = suite.expect.Locator(suite.page.Locator(".flash-danger")).ToContainText("Invalid username or password")
	require.NoError(suite.T(), err, "expected invalid credentials message")
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
